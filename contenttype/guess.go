package contenttype

import (
	"mime"
	"path"
	"strings"
)

// suffixes maps shorthand extensions to the compound extension they stand for.
var suffixes = map[string]string{
	".svgz": ".svg.gz",
	".tgz":  ".tar.gz",
	".taz":  ".tar.gz",
	".tz":   ".tar.gz",
	".tbz2": ".tar.bz2",
	".txz":  ".tar.xz",
}

// compressions maps the extension of a compression scheme to the media type
// of the compressed file. These are matched case-sensitively since .Z and .z
// are different things.
var compressions = map[string]string{
	".gz":  "application/gzip",
	".Z":   "application/x-compress",
	".bz2": "application/x-bzip2",
	".xz":  "application/x-xz",
	".br":  "application/x-br",
}

// knownTypes is consulted before the system MIME tables so that the common
// cases give the same answer everywhere.
var knownTypes = map[string]string{
	".7z":   "application/x-7z-compressed",
	".bin":  "application/octet-stream",
	".bmp":  "image/bmp",
	".c":    "text/plain",
	".css":  "text/css",
	".csv":  "text/csv",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".eml":  "message/rfc822",
	".gif":  "image/gif",
	".h":    "text/plain",
	".htm":  "text/html",
	".html": "text/html",
	".ico":  "image/vnd.microsoft.icon",
	".ics":  "text/calendar",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".js":   "text/javascript",
	".json": "application/json",
	".md":   "text/markdown",
	".mht":  "message/rfc822",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".odt":  "application/vnd.oasis.opendocument.text",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".ppt":  "application/vnd.ms-powerpoint",
	".py":   "text/x-python",
	".rtf":  "application/rtf",
	".sh":   "application/x-sh",
	".svg":  "image/svg+xml",
	".tar":  "application/x-tar",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".txt":  "text/plain",
	".vcf":  "text/vcard",
	".wav":  "audio/x-wav",
	".webp": "image/webp",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xml":  "text/xml",
	".yaml": "application/yaml",
	".zip":  "application/zip",
}

// GuessType guesses the media type of a file from its name. When the final
// extension names a compression scheme, the type of the compressed file is
// returned rather than that of its contents, so "a.tar.gz" is
// "application/gzip". When nothing matches, it returns
// "application/octet-stream".
func GuessType(filename string) string {
	base, ext := splitExt(filename)
	for {
		full, ok := suffixes[ext]
		if !ok {
			full, ok = suffixes[strings.ToLower(ext)]
		}
		if !ok {
			break
		}
		base, ext = splitExt(base + full)
	}

	if ct, ok := compressions[ext]; ok {
		return ct
	}
	if ct, ok := compressions[strings.ToLower(ext)]; ok {
		return ct
	}

	if ext == "" {
		return ApplicationOctetStream
	}

	if ct, ok := knownTypes[strings.ToLower(ext)]; ok {
		return ct
	}

	if ct := mime.TypeByExtension(ext); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt
		}
	}

	return ApplicationOctetStream
}

// splitExt splits the name into the part before the final extension and the
// extension itself, including the dot. Leading dots of hidden files are not
// extensions.
func splitExt(name string) (string, string) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return name, ""
	}
	return name[:len(name)-len(ext)], ext
}
