package zonecache

import (
	"os"
	"path/filepath"
	"strings"
)

const etcLocaltime = "/etc/localtime"

// DefaultDirs are the zoneinfo directories searched when none are
// configured.
var DefaultDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/lib/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/etc/zoneinfo",
}

// SystemDefault returns the identifier of the system's default zone. If the
// TZ environment variable is set, it is used; set but empty means UTC.
// Otherwise the target of the /etc/localtime symlink below a zoneinfo
// directory names the zone. If neither works, "UTC" is returned.
func SystemDefault() string {
	return systemDefault(os.LookupEnv, etcLocaltime)
}

func systemDefault(lookupEnv func(string) (string, bool), localtime string) string {
	if tz, found := lookupEnv("TZ"); found {
		tz = strings.TrimPrefix(tz, ":")
		if tz == "" {
			return "UTC"
		}
		return tz
	}

	lp, err := filepath.EvalSymlinks(localtime)
	if err != nil {
		return "UTC"
	}
	if i := strings.LastIndex(lp, "/zoneinfo/"); i >= 0 {
		if id := lp[i+len("/zoneinfo/"):]; id != "" {
			return strings.TrimPrefix(strings.TrimPrefix(id, "posix/"), "right/")
		}
	}
	return "UTC"
}
