// Package naming derives the year/month of an input grid from its file name and
// the location of the rendered map.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoPeriod = errors.New("file name has no year/month token")

	// a 4-digit year, an optional separator and a 2-digit month at the end of the stem
	periodPattern = regexp.MustCompile(`(?:^|\D)(\d{4})[_-]?(\d{2})$`)
	tokenPattern  = regexp.MustCompile(`^(\d{4})_(\d{2})$`)
)

type Period struct {
	Year  int
	Month int
}

// Parse reads the period from a file name such as sst_202403.nc.
func Parse(path string) (Period, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	m := periodPattern.FindStringSubmatch(stem)
	if m == nil {
		return Period{}, fmt.Errorf("%w: %s", ErrNoPeriod, base)
	}
	return newPeriod(m[1], m[2], base)
}

// ParseToken reads a YYYY_MM token.
func ParseToken(token string) (Period, error) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return Period{}, fmt.Errorf("%w: %q", ErrNoPeriod, token)
	}
	return newPeriod(m[1], m[2], token)
}

func newPeriod(year, month, source string) (Period, error) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	if m < 1 || m > 12 {
		return Period{}, fmt.Errorf("%w: month %02d out of range in %s", ErrNoPeriod, m, source)
	}
	return Period{Year: y, Month: m}, nil
}

// Token is the YYYY_MM label used in titles and file names.
func (p Period) Token() string {
	return fmt.Sprintf("%04d_%02d", p.Year, p.Month)
}

func (p Period) String() string {
	return p.Token()
}

// OutputPath is <root>/<year>/SST_<year>_<month>.<ext>.
func (p Period) OutputPath(root, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return filepath.Join(root, fmt.Sprintf("%04d", p.Year), "SST_"+p.Token()+"."+ext)
}

// OutputPath resolves the output path for a YYYY_MM token.
func OutputPath(root, token, ext string) (string, error) {
	p, err := ParseToken(token)
	if err != nil {
		return "", err
	}
	return p.OutputPath(root, ext), nil
}
