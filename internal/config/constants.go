package config

const SourceFileExt = ".tys"

// SourceFileExtensions are all recognized document source extensions.
var SourceFileExtensions = []string{".tys", ".typeset"}

// ProjectFileName is the per-project configuration file.
const ProjectFileName = "typeset.yaml"

// MaxIterations bounds the convergence loop: evaluation is re-run at
// most this many times before leftover deferred errors become fatal.
const MaxIterations = 5

// CacheFileName is the artifact database inside the cache directory.
const CacheFileName = "artifacts.db"
