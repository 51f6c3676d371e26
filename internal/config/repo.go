package config

import "github.com/dkazen/meridian/internal/ingest"

// RepoOptions resolves the ingest options for repoPath, merging the
// global defaults with any per-repo override — the same merge
// `get_repo_config` performs against its DEFAULTS dict.
func (c *Config) RepoOptions(repoPath string) ingest.Options {
	opts := ingest.Options{
		TokenTarget:      c.Defaults.TokenTarget,
		OverlapTokens:    c.Defaults.OverlapTokens,
		ChunkThreshold:   c.Defaults.ChunkThreshold,
		MaxFileSizeBytes: c.Defaults.MaxFileSizeBytes,
	}

	override, ok := c.Repos[repoPath]
	if !ok {
		return opts
	}
	if override.TokenTarget != nil {
		opts.TokenTarget = *override.TokenTarget
	}
	if override.OverlapTokens != nil {
		opts.OverlapTokens = *override.OverlapTokens
	}
	if override.ChunkThreshold != nil {
		opts.ChunkThreshold = *override.ChunkThreshold
	}
	if override.MaxFileSizeBytes != nil {
		opts.MaxFileSizeBytes = *override.MaxFileSizeBytes
	}
	return opts
}

// SetRepoOverride stores a per-repository override, creating the Repos
// map if needed.
func (c *Config) SetRepoOverride(repoPath string, override RepoOverride) {
	if c.Repos == nil {
		c.Repos = map[string]RepoOverride{}
	}
	c.Repos[repoPath] = override
}
