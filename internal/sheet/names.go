package sheet

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

// MaxSheetNameLength is the longest sheet name spreadsheet applications accept.
const MaxSheetNameLength = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SanitizeSheetName makes name usable as a worksheet name.
func SanitizeSheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	name = strings.Trim(name, "'")
	name = truncateRunes(name, MaxSheetNameLength)
	if strings.TrimSpace(name) == "" {
		return "Sheet"
	}
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// SheetNamer hands out sanitized worksheet names, suffixing repeats with
// _2, _3 and so on. Names are compared case-insensitively.
type SheetNamer struct {
	used map[string]struct{}
}

// NewSheetNamer creates an empty SheetNamer
func NewSheetNamer() *SheetNamer {
	return &SheetNamer{used: make(map[string]struct{})}
}

// Next returns a unique name for name
func (n *SheetNamer) Next(name string) string {
	base := SanitizeSheetName(name)
	candidate := base
	for i := 2; n.taken(candidate); i++ {
		suffix := "_" + strconv.Itoa(i)
		candidate = truncateRunes(base, MaxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
	}
	n.used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func (n *SheetNamer) taken(name string) bool {
	_, ok := n.used[strings.ToLower(name)]
	return ok
}

// FileNamer hands out unique archive member names of the form
// export_<slug>.csv.
type FileNamer struct {
	used map[string]struct{}
}

// NewFileNamer creates an empty FileNamer
func NewFileNamer() *FileNamer {
	return &FileNamer{used: make(map[string]struct{})}
}

// Next returns a unique file name for the group called name
func (n *FileNamer) Next(name string) string {
	base := FileSlug(name)
	candidate := base
	for i := 2; ; i++ {
		if _, ok := n.used[candidate]; !ok {
			break
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
	n.used[candidate] = struct{}{}
	return "export_" + candidate + ".csv"
}

// FileSlug is the file-name-safe form of a group name
func FileSlug(name string) string {
	if s := slug.Make(name); s != "" {
		return s
	}
	return "export"
}
