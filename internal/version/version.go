// Package version хранит сведения о сборке marketplace, заданные через -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	commit, date = fromBuildSettings(commit, date, info.Settings)
}

// fromBuildSettings подставляет ревизию и время коммита из vcs-метаданных go build,
// если они не были заданы через -ldflags.
func fromBuildSettings(commit, date string, settings []debug.BuildSetting) (string, string) {
	if commit != "unknown" {
		return commit, date
	}
	for _, setting := range settings {
		if setting.Value == "" {
			continue
		}
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
		case "vcs.time":
			if date == "unknown" {
				date = setting.Value
			}
		}
	}
	return commit, date
}

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// String форматирует сведения о сборке для логов.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
