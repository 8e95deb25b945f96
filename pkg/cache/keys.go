package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// GraphKeyOpts are the inputs that determine a built graph.
type GraphKeyOpts struct {
	Depth int `json:"depth,omitempty"` // Inverse trees only
}

// LayoutKeyOpts are the inputs that determine a layout.
type LayoutKeyOpts struct {
	VizType           string  `json:"viz_type"`
	HorizontalSpacing float64 `json:"h"`
	VerticalSpacing   float64 `json:"v"`
	AnchorX           float64 `json:"x"`
	BaselineY         float64 `json:"y"`
	Detailed          bool    `json:"detailed,omitempty"` // Nodelink labels
}

// ArtifactKeyOpts are the inputs that determine a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	VizType    string  `json:"viz_type"`
	NodeRadius float64 `json:"radius,omitempty"`
	Scale      float64 `json:"scale,omitempty"` // PNG only
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	GraphKey(mode string, start uint64, opts GraphKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "<type>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns the key for the graph of mode ("sequence" or "inverse")
// starting at start.
func (DefaultKeyer) GraphKey(mode string, start uint64, opts GraphKeyOpts) string {
	return hashKey(KeyTypeGraph, mode, start, opts)
}

// LayoutKey returns the key for a layout of the graph with the given hash.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, graphHash, opts)
}

// ArtifactKey returns the key for an artifact rendered from the layout with
// the given hash.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "collatz:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(mode string, start uint64, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(mode, start, opts)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// KeyType returns the key type of a generated key, ignoring any scope
// prefix, or "" if the key was not produced by a Keyer.
func KeyType(key string) string {
	for _, t := range []string{KeyTypeGraph, KeyTypeLayout, KeyTypeArtifact} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return ""
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
