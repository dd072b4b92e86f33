package parsing

import (
	"bufio"
	"net/url"
	"os"
	"strings"

	"vidrelay/internal/utils/logging"
)

// URLFileParser reads download URLs from a file.
type URLFileParser struct {
	Filepath string
}

// NewURLFileParser returns an instance of a URLFileParser.
func NewURLFileParser(fpath string) *URLFileParser {
	return &URLFileParser{
		Filepath: fpath,
	}
}

// ParseURLs returns the URLs in the file in order, without duplicates.
//
// Put a single URL on each line. Lines starting with '#' are skipped.
func (up *URLFileParser) ParseURLs() ([]string, error) {
	f, err := os.Open(up.Filepath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.E("Failed to close file %q: %v", up.Filepath, err)
		}
	}()

	var (
		seen   = make(map[string]struct{})
		result []string
	)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		u := strings.TrimSpace(scanner.Text())
		if u == "" || strings.HasPrefix(u, "#") {
			continue
		}

		parsedURL, err := url.Parse(u)
		if err != nil {
			logging.E("URL %q is invalid: %v", u, err)
			continue
		}
		key := parsedURL.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, key)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
