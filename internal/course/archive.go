package course

import (
	"archive/zip"
	"bytes"
	"errors"
	"path"
	"strings"

	"coursecaptions/internal/fileutil"
	"coursecaptions/internal/services"
)

// ListMembers returns the file entries of a ZIP archive in archive order.
// Directory entries, macOS resource forks and names that would escape the
// course directory are skipped.
func ListMembers(archive []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && reader != nil) {
		return nil, services.Wrap(services.ErrValidation, "course", "list members", "open archive", err)
	}
	members := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		name := file.Name
		if file.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			continue
		}
		if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._") {
			continue
		}
		if !isSafeMember(name) {
			continue
		}
		members = append(members, name)
	}
	return members, nil
}

// CaptionName maps an archive member (01-intro.txt) to the caption file
// fetched from the host (01-intro.vtt).
func CaptionName(member, extension string) string {
	return fileutil.ReplaceExt(member, extension)
}

// OutputName maps an archive member to the translated SRT file name, relative
// to the course caption directory. A non-empty language is inserted before the
// extension (01-intro.es.srt) so several target languages can share a course.
func OutputName(member, language string) string {
	if language == "" {
		return fileutil.ReplaceExt(member, ".srt")
	}
	return fileutil.ReplaceExt(member, "."+language+".srt")
}

func isSafeMember(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return false
	}
	cleaned := path.Clean(name)
	return cleaned == name && cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}
