// Package source defines where search records come from: markdown
// directories, the headless CMS, and combinators that chain or merge them.
package source
