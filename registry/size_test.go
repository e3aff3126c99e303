package registry

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	digest "github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanSize(t *testing.T) {
	testcases := []struct {
		byteCount int64
		expected  string
	}{
		{byteCount: 0, expected: "0.0 B"},
		{byteCount: 999, expected: "999.0 B"},
		{byteCount: 1000, expected: "1.0 KB"},
		{byteCount: 1500000, expected: "1.5 MB"},
		{byteCount: 2000000000, expected: "2.0 GB"},
		{byteCount: 3400000000000, expected: "3.4 TB"},
		{byteCount: 999999999999999, expected: "1000.0 TB"},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.expected, HumanSize(tc.byteCount), "HumanSize(%d)", tc.byteCount)
	}
}

// fakeRepository serves tag listings and manifests for a single repository.
type fakeRepository struct {
	name      string
	tags      []string
	manifests map[string]string
	statuses  map[string]int
}

func (f *fakeRepository) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/_catalog", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"repositories":["%s"]}`, f.name)
	})
	mux.HandleFunc("/v2/"+f.name+"/tags/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tags":[`))
		for i, tag := range f.tags {
			if i > 0 {
				w.Write([]byte(`,`))
			}
			fmt.Fprintf(w, "%q", tag)
		}
		w.Write([]byte(`]}`))
	})
	mux.HandleFunc("/v2/"+f.name+"/manifests/", func(w http.ResponseWriter, r *http.Request) {
		tag := r.URL.Path[len("/v2/"+f.name+"/manifests/"):]
		if status, ok := f.statuses[tag]; ok {
			http.Error(w, "injected failure", status)
			return
		}

		body, ok := f.manifests[tag]
		if !ok {
			http.Error(w, "manifest unknown", http.StatusNotFound)
			return
		}

		w.Header().Set("Docker-Content-Digest", digest.FromString(body).String())
		fmt.Fprint(w, body)
	})

	return mux
}

func manifestBody(layers ...string) string {
	body := `{"schemaVersion":2,"layers":[`
	for i, l := range layers {
		if i > 0 {
			body += ","
		}
		body += l
	}
	return body + `]}`
}

func TestRepositorySize(t *testing.T) {
	fake := &fakeRepository{
		name: "app",
		tags: []string{"v1", "v2"},
		manifests: map[string]string{
			"v1": manifestBody(
				`{"digest":"sha256:aaa","size":100}`,
				`{"digest":"sha256:bbb","size":200}`,
			),
			"v2": manifestBody(
				`{"digest":"sha256:aaa","size":100}`,
				`{"digest":"sha256:ccc","size":50}`,
			),
		},
	}

	reg := newTestRegistry(t, fake.handler())
	report, err := reg.RepositorySize("app")
	require.NoError(t, err)
	assert.Equal(t, "app", report.Repository)
	require.Len(t, report.Tags, 2)
	assert.Equal(t, "v1", report.Tags[0].Tag)
	assert.Equal(t, int64(300), report.Tags[0].Size)
	assert.NoError(t, report.Tags[0].Err)
	assert.Equal(t, "v2", report.Tags[1].Tag)
	assert.Equal(t, int64(150), report.Tags[1].Size)
	// sha256:aaa is shared between v1 and v2 and must be counted once.
	assert.Equal(t, int64(350), report.Total)
}

func TestRepositorySize_DeduplicatesConflictingSizes(t *testing.T) {
	fake := &fakeRepository{
		name: "app",
		tags: []string{"v1", "v2"},
		manifests: map[string]string{
			"v1": manifestBody(`{"digest":"sha256:aaa","size":100}`),
			"v2": manifestBody(`{"digest":"sha256:aaa","size":120}`),
		},
	}

	reg := newTestRegistry(t, fake.handler())
	report, err := reg.RepositorySize("app")
	require.NoError(t, err)
	assert.Equal(t, int64(100), report.Tags[0].Size)
	assert.Equal(t, int64(120), report.Tags[1].Size)
	// Never 220: the digest is counted once, with the last seen size.
	assert.Equal(t, int64(120), report.Total)
}

func TestRepositorySize_ContinuesPastFailingTags(t *testing.T) {
	fake := &fakeRepository{
		name: "app",
		tags: []string{"a", "b", "c", "d"},
		manifests: map[string]string{
			"a": manifestBody(`{"digest":"sha256:aaa","size":100}`),
			"c": manifestBody(`{"digest":"sha256:ccc","size":50}`),
		},
		statuses: map[string]int{
			"b": http.StatusInternalServerError,
		},
	}

	reg := newTestRegistry(t, fake.handler())
	report, err := reg.RepositorySize("app")
	require.NoError(t, err)
	require.Len(t, report.Tags, 4)
	assert.NoError(t, report.Tags[0].Err)
	assert.Error(t, report.Tags[1].Err)
	assert.EqualError(t, report.Tags[3].Err, "no manifest found")
	assert.Equal(t, "b", report.Tags[1].Tag)
	assert.Equal(t, "c", report.Tags[2].Tag)
	assert.Equal(t, int64(150), report.Total)
}

func TestRepositorySize_FailingTagListing(t *testing.T) {
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := reg.RepositorySize("app")
	assert.Error(t, err)
}

func TestRepositorySize_Parallel(t *testing.T) {
	tags := []string{}
	manifests := map[string]string{}
	var expectedTotal int64
	for i := 0; i < 20; i++ {
		tag := fmt.Sprintf("v%d", i)
		tags = append(tags, tag)
		manifests[tag] = manifestBody(
			fmt.Sprintf(`{"digest":"sha256:%d","size":%d}`, i, i+1),
			`{"digest":"sha256:shared","size":1000}`,
		)
		expectedTotal += int64(i + 1)
	}
	expectedTotal += 1000

	fake := &fakeRepository{name: "app", tags: tags, manifests: manifests}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	reg, err := New(Opts{Address: server.URL, Workers: 4})
	require.NoError(t, err)

	report, err := reg.RepositorySize("app")
	require.NoError(t, err)
	require.Len(t, report.Tags, len(tags))
	for i, tagReport := range report.Tags {
		assert.Equal(t, tags[i], tagReport.Tag)
		assert.Equal(t, int64(i+1+1000), tagReport.Size)
	}
	assert.Equal(t, expectedTotal, report.Total)
}

func TestAllSizes(t *testing.T) {
	fake := &fakeRepository{
		name: "app",
		tags: []string{"v1"},
		manifests: map[string]string{
			"v1": manifestBody(`{"digest":"sha256:aaa","size":100}`),
		},
	}

	reg := newTestRegistry(t, fake.handler())
	reports, err := reg.AllSizes()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "app", reports[0].Repository)
	assert.Equal(t, int64(100), reports[0].Total)
}

func TestSizeReportLines(t *testing.T) {
	report := &SizeReport{
		Repository: "app",
		Tags: []TagReport{
			{Tag: "v1", Digest: "sha256:abc", Size: 1500000},
			{Tag: "v2", Err: fmt.Errorf("no manifest found")},
		},
		Total: 1500000,
	}

	assert.Equal(
		t,
		[]string{
			"app:v1 sha256:abc 1.5 MB",
			"app:v2 error: no manifest found",
			"app total: 1.5 MB",
		},
		report.Lines(),
	)
}
