// Package language provides language code normalization for translation targets.
//
// Recognized ISO 639-1/639-2 codes and English word forms map through a small
// table; anything else is parsed as a BCP 47 tag with golang.org/x/text so
// regional targets such as "pt-BR" or "zh-TW" survive configuration loading.
package language
