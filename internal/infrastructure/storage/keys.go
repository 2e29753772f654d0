package storage

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// MaxPDFSize taille maximale des PDF joints (prescriptions, factures)
const MaxPDFSize = 5 << 20

// TimestampedKey clé <dir>/<unix>_<nom d'origine>
func TimestampedKey(dir, filename string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." {
		name = "document.pdf"
	}
	return path.Join(dir, strconv.FormatInt(at.Unix(), 10)+"_"+name)
}
