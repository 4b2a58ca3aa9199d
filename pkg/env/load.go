package env

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/boardlink/pkg/l0/comm"
)

// Load merges the board file into the config.
// Settings in the file override the defaults; boards already given on the
// command line override boards of the same role in the file.
func (c *Config) Load(path string) error {
	file := *c
	file.Boards = nil
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = loadYAML(path, &file)
	case ".toml":
		_, err = toml.DecodeFile(path, &file)
	default:
		return fmt.Errorf("unknown config format: %q", path)
	}
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	file.Boards = mergeBoards(file.Boards, c.Boards)
	file.ConfigFile = path
	*c = file
	return nil
}

func loadYAML(path string, out *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	return dec.Decode(out)
}

func mergeBoards(base, override []Board) []Board {
	roleOf := func(b Board) string {
		if role, err := comm.ParseRole(b.Role); err == nil {
			return role.String()
		}
		return b.Role
	}
	res := make([]Board, 0, len(base)+len(override))
	index := make(map[string]int)
	for _, b := range base {
		index[roleOf(b)] = len(res)
		res = append(res, b)
	}
	for _, b := range override {
		if n, ok := index[roleOf(b)]; ok {
			res[n] = b
			continue
		}
		res = append(res, b)
	}
	return res
}

// Resolve loads ConfigFile if set and validates the config.
func (c *Config) Resolve() error {
	if c.ConfigFile != "" {
		if err := c.Load(c.ConfigFile); err != nil {
			return err
		}
	}
	return c.Validate()
}

// MustResolve resolves the config and fails on error.
func (c *Config) MustResolve() *Config {
	if err := c.Resolve(); err != nil {
		log.Fatalln(err)
	}
	return c
}
