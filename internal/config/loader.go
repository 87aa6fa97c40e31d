package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/webresearch/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".webresearch.yml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads tool configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .webresearch.yml in the current directory
// 3. Look for .webresearch.yml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// LoadSeeds reads a seed URL list file: one URL per line, blank lines
// and lines starting with "#" skipped. URL validity is checked later by
// Config.Validate so file loading and semantic validation stay separate.
func LoadSeeds(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open seed URL file: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed URL file: %w", err)
	}

	return seeds, nil
}

// LoadKeywords reads a keyword list file. Each line holds one keyword,
// optionally followed by a colon and a free-text description:
//
//	machine learning : training and evaluating predictive models
//	quantization
//
// Blank lines and "#" comment lines are skipped. A line without a colon
// yields a keyword with an empty description.
func LoadKeywords(path string) ([]model.KeywordSpec, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open keywords file: %w", err)
	}
	defer f.Close()

	var keywords []model.KeywordSpec
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, parseKeywordLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	return keywords, nil
}

// parseKeywordLine splits "term : description" on the first colon.
// Both sides are trimmed; the description may be empty.
func parseKeywordLine(line string) model.KeywordSpec {
	term, desc, found := strings.Cut(line, ":")
	if !found {
		return model.KeywordSpec{Term: strings.TrimSpace(line)}
	}
	return model.KeywordSpec{
		Term:        strings.TrimSpace(term),
		Description: strings.TrimSpace(desc),
	}
}
