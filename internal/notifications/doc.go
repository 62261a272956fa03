// Package notifications announces finished course runs.
//
// The default implementation publishes to the ntfy topic URL configured under
// [notifications] and degrades to a no-op when no topic is set. Messages are
// plain text with ntfy Title, Tags, and Priority headers.
package notifications
