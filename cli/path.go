package cli

import "os"

// defaultDirMode is the permission mode of created runtime directories.
const defaultDirMode os.FileMode = 0o700

// paths locates the runtime files of the command.
type paths struct {
	configFile string
	configDir  string
	cacheDir   string
}

// mkdirAllRequired creates all required runtime directories.
func (p paths) mkdirAllRequired() error {
	for _, dir := range []string{p.configDir, p.cacheDir} {
		if dir == "" {
			continue
		}

		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
