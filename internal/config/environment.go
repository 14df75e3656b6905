package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Environment is one managed registry instance, loaded from its properties
// file. Password may be empty after loading: it is resolved from Vault when
// the file names a secret path, otherwise the caller prompts for it.
type Environment struct {
	Name            string
	Group           string
	File            string
	URL             string
	Username        string
	Password        string
	VaultSecretPath string
}

// Groups in listing order. An environment's group is the token before the
// first underscore of its file name; anything else lands in the last group.
var Groups = []string{"PROD", "QA", "TEST", "DEV"}

// EnvFile is a discovered properties file before it is parsed.
type EnvFile struct {
	Name  string
	Group string
	Path  string
}

// DiscoverEnvironments scans dir for .properties files. The environment name
// is the token after the last underscore of the base name, the group the
// token before the first underscore (e.g. "PROD_osb_FINANCE.properties" is
// environment FINANCE in group PROD). Results are sorted by name.
func DiscoverEnvironments(dir string) ([]EnvFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var envs []EnvFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".properties") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".properties")
		name := base
		group := ""
		if i := strings.LastIndex(base, "_"); i >= 0 {
			name = base[i+1:]
		}
		if i := strings.Index(base, "_"); i >= 0 {
			group = base[:i]
		}
		envs = append(envs, EnvFile{
			Name:  name,
			Group: group,
			Path:  filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(envs, func(i, j int) bool { return envs[i].Name < envs[j].Name })
	return envs, nil
}

// LoadEnvironment reads the named environment's properties file and, when
// the file names a Vault secret path and the password is not in the file,
// resolves the credentials from Vault.
func LoadEnvironment(ctx context.Context, cfg Config, name string) (Environment, error) {
	envs, err := DiscoverEnvironments(cfg.EnvDir)
	if err != nil {
		return Environment{}, err
	}

	var file EnvFile
	found := false
	for _, e := range envs {
		if e.Name == name {
			file = e
			found = true
			break
		}
	}
	if !found {
		return Environment{}, fmt.Errorf("no properties file for environment %q in %s", name, cfg.EnvDir)
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Environment{}, err
	}
	defer f.Close()

	props, err := parseProperties(f)
	if err != nil {
		return Environment{}, fmt.Errorf("parsing %s: %w", file.Path, err)
	}

	env := Environment{
		Name:            file.Name,
		Group:           file.Group,
		File:            file.Path,
		URL:             props["url"],
		Username:        props["usrname"],
		Password:        props["password"],
		VaultSecretPath: props["vault.path"],
	}
	// Some newer files spell the key out.
	if env.Username == "" {
		env.Username = props["username"]
	}
	if env.URL == "" {
		return Environment{}, fmt.Errorf("%s: url property is missing", file.Path)
	}

	if env.Password == "" && env.VaultSecretPath != "" && cfg.VaultAddr != "" {
		username, password, err := readVaultCredentials(ctx, cfg, env.VaultSecretPath)
		if err != nil {
			return Environment{}, fmt.Errorf("resolving credentials for %q from vault: %w", name, err)
		}
		if username != "" {
			env.Username = username
		}
		env.Password = password
	}

	return env, nil
}
