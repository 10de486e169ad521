package extract

import "strings"

// mediaExtensions are the file extensions treated as already-direct links.
var mediaExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".gifv", ".mp4", ".webm"}

// splitTail splits a URL on its last "/".
// e.g. "https://i.redd.it/abc.jpg" -> ("https://i.redd.it", "abc.jpg")
func splitTail(u string) (head, tail string, ok bool) {
	i := strings.LastIndex(u, "/")
	if i < 0 {
		return "", "", false
	}
	return u[:i], u[i+1:], true
}

// splitExt splits a file name on its last "." and drops any query string or
// fragment from the extension.
// e.g. "abc.jpg?width=640" -> ("abc", "jpg")
func splitExt(name string) (base, ext string, ok bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", "", false
	}
	base, ext = name[:i], name[i+1:]
	if j := strings.IndexAny(ext, "?#"); j >= 0 {
		ext = ext[:j]
	}
	return base, ext, true
}

// idAndExt recovers the bare id and extension from the last path segment.
func idAndExt(u string) (id, ext string, err error) {
	_, tail, ok := splitTail(u)
	if !ok {
		return "", "", &MalformedURLError{URL: u, Reason: "no path separator"}
	}
	id, ext, ok = splitExt(tail)
	if !ok {
		return "", "", &MalformedURLError{URL: u, Reason: "no file extension"}
	}
	return id, ext, nil
}

// lastSegment returns everything after the last "/".
func lastSegment(u string) (string, error) {
	_, tail, ok := splitTail(u)
	if !ok {
		return "", &MalformedURLError{URL: u, Reason: "no path separator"}
	}
	return tail, nil
}

// hasSuffixFold reports whether u ends with any of suffixes, ignoring case.
func hasSuffixFold(u string, suffixes ...string) bool {
	lower := strings.ToLower(u)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// extOf returns the extension of the last path segment of u.
func extOf(u string) (string, error) {
	name := u
	if _, tail, ok := splitTail(u); ok {
		name = tail
	}
	_, ext, ok := splitExt(name)
	if !ok {
		return "", &MalformedURLError{URL: u, Reason: "no file extension"}
	}
	return ext, nil
}
