package registry

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/docker/distribution/manifest/schema2"
	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

const contentDigestHeader = "Docker-Content-Digest"

type catalogResponse struct {
	Repositories []string `json:"repositories"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// Validate checks that the configured address serves the V2 API. The root
// endpoint must answer with an empty JSON object; anything else means the
// address, the trust material or the registry itself is broken.
func (r *Registry) Validate() error {
	body, _, err := r.do(http.MethodGet, "")
	if err != nil {
		return errors.Wrap(err, "validating registry")
	}

	var decoded map[string]interface{}
	err = decode(body, &decoded)
	if err != nil {
		return errors.Wrap(err, "validating registry")
	}

	if decoded == nil || len(decoded) != 0 {
		return errors.Errorf("%s is not a registry V2 endpoint: unexpected response %q", r.address, body)
	}

	return nil
}

// Repositories returns one page of the registry catalog. No follow-up request
// is made for further pages.
func (r *Registry) Repositories() ([]string, error) {
	body, _, err := r.do(http.MethodGet, fmt.Sprintf("_catalog?n=%d", r.catalogPageSize))
	if err != nil {
		return nil, errors.Wrap(err, "listing repositories")
	}

	catalog := &catalogResponse{}
	err = decode(body, catalog)
	if err != nil {
		return nil, errors.Wrap(err, "listing repositories")
	}

	return catalog.Repositories, nil
}

// Tags returns the tags of repo. A repository without tags yields an empty
// slice.
func (r *Registry) Tags(repo string) ([]string, error) {
	body, _, err := r.do(http.MethodGet, url.PathEscape(repo)+"/tags/list")
	if err != nil {
		return nil, errors.Wrapf(err, "listing tags of %s", repo)
	}

	tags := &tagsResponse{}
	err = decode(body, tags)
	if err != nil {
		return nil, errors.Wrapf(err, "listing tags of %s", repo)
	}

	if tags.Tags == nil {
		return []string{}, nil
	}

	return tags.Tags, nil
}

// Manifest fetches the manifest of reference (a tag or a digest) in repo.
// A missing manifest is not an error: found is false and the error is nil.
// Every other failure, a schema version other than 2 included, is returned
// as an error.
func (r *Registry) Manifest(repo string, reference string) (m *Manifest, found bool, err error) {
	body, header, err := r.do(http.MethodGet, url.PathEscape(repo)+"/manifests/"+url.PathEscape(reference))
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}

		return nil, false, errors.Wrapf(err, "fetching manifest %s:%s", repo, reference)
	}

	raw := schema2.Manifest{}
	err = decode(body, &raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "fetching manifest %s:%s", repo, reference)
	}

	m, err = NewManifest(raw, digest.Digest(header.Get(contentDigestHeader)))
	if err != nil {
		return nil, false, errors.Wrapf(err, "fetching manifest %s:%s", repo, reference)
	}

	return m, true, nil
}

// DeleteManifest deletes the manifest identified by dgst from repo. Registries
// only accept digests here, not tags.
func (r *Registry) DeleteManifest(repo string, dgst digest.Digest) error {
	_, _, err := r.do(http.MethodDelete, url.PathEscape(repo)+"/manifests/"+url.PathEscape(dgst.String()))
	if err != nil {
		return errors.Wrapf(err, "deleting manifest %s@%s", repo, dgst)
	}

	r.log.Infof("deleted manifest %s@%s", repo, dgst)
	return nil
}

// DeleteBlob deletes the blob identified by dgst from repo.
func (r *Registry) DeleteBlob(repo string, dgst digest.Digest) error {
	_, _, err := r.do(http.MethodDelete, url.PathEscape(repo)+"/blobs/"+url.PathEscape(dgst.String()))
	if err != nil {
		return errors.Wrapf(err, "deleting blob %s@%s", repo, dgst)
	}

	r.log.Infof("deleted blob %s@%s", repo, dgst)
	return nil
}
