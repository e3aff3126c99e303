package registry

import (
	"github.com/docker/distribution/manifest/schema2"
	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

const supportedSchemaVersion = 2

// Layer is one content-addressed blob referenced by a manifest.
type Layer struct {
	digest digest.Digest
	size   int64
}

func (l Layer) Digest() digest.Digest {
	return l.digest
}

func (l Layer) Size() int64 {
	return l.size
}

// Manifest is a validated schema2 image manifest. Its digest is the
// content digest reported by the registry for the whole manifest, not the
// digest of any layer.
type Manifest struct {
	digest        digest.Digest
	layers        []Layer
	schemaVersion int
}

func (m *Manifest) Digest() digest.Digest {
	return m.digest
}

func (m *Manifest) SchemaVersion() int {
	return m.schemaVersion
}

// Layers returns the manifest's layers in the order the registry listed them.
func (m *Manifest) Layers() []Layer {
	layers := make([]Layer, len(m.layers))
	copy(layers, m.layers)
	return layers
}

// NewManifest builds a Manifest from a decoded schema2 manifest and the
// content digest reported by the registry. It fails for every schema version
// other than 2.
func NewManifest(raw schema2.Manifest, dgst digest.Digest) (*Manifest, error) {
	if raw.SchemaVersion != supportedSchemaVersion {
		return nil, errors.Errorf("unsupported manifest schema version %d", raw.SchemaVersion)
	}

	layers := make([]Layer, 0, len(raw.Layers))
	for _, rawLayer := range raw.Layers {
		layers = append(layers, Layer{
			digest: rawLayer.Digest,
			size:   rawLayer.Size,
		})
	}

	return &Manifest{
		digest:        dgst,
		layers:        layers,
		schemaVersion: raw.SchemaVersion,
	}, nil
}
