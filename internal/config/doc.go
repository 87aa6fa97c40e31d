// Package config provides configuration structures and utilities for
// webresearch. It defines the pipeline options (crawl limits, scoring
// threshold, strategy selection, output settings), loads the seed URL
// and keyword input files, and merges the optional .webresearch.yml
// configuration file.
package config
