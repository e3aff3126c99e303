package registry

import (
	"fmt"
	"sync"

	"github.com/Jeffail/tunny"
	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize renders a byte count with one decimal place, using decimal units
// up to TB. Counts beyond 1000 TB stay in TB.
func HumanSize(byteCount int64) string {
	size := float64(byteCount)
	unit := 0
	for size >= 1000 && unit < len(sizeUnits)-1 {
		size = size / 1000
		unit++
	}

	return fmt.Sprintf("%.1f %s", size, sizeUnits[unit])
}

// TagReport is the scan result of a single tag: either the digest and
// summed layer size of its manifest, or the error that tag ran into.
type TagReport struct {
	Tag    string
	Digest digest.Digest
	Size   int64
	Err    error
}

// SizeReport is the scan result of one repository. Tags keeps the order of
// the registry's tag listing. Total counts every layer digest seen in the
// repository exactly once, so layers shared between tags do not inflate it.
type SizeReport struct {
	Repository string
	Tags       []TagReport
	Total      int64
}

// Lines renders the report for line-by-line output.
func (s *SizeReport) Lines() []string {
	lines := make([]string, 0, len(s.Tags)+1)
	for _, t := range s.Tags {
		if t.Err != nil {
			lines = append(lines, fmt.Sprintf("%s:%s error: %s", s.Repository, t.Tag, t.Err))
			continue
		}

		lines = append(lines, fmt.Sprintf("%s:%s %s %s", s.Repository, t.Tag, t.Digest, HumanSize(t.Size)))
	}

	return append(lines, fmt.Sprintf("%s total: %s", s.Repository, HumanSize(s.Total)))
}

// RepositorySize scans every tag of repo and aggregates layer sizes. A tag
// whose manifest cannot be fetched is recorded with its error and does not
// stop the scan; only a failing tag listing aborts. With Opts.Workers > 1 the
// manifest fetches run concurrently, the report still lists tags in listing
// order.
func (r *Registry) RepositorySize(repo string) (*SizeReport, error) {
	tags, err := r.Tags(repo)
	if err != nil {
		return nil, err
	}

	r.log.Debugf("scanning %d tags of repository %s", len(tags), repo)
	report := &SizeReport{
		Repository: repo,
		Tags:       make([]TagReport, len(tags)),
	}

	layerSizes := map[digest.Digest]int64{}
	mutex := &sync.Mutex{}
	scanTag := func(idx int) {
		tag := tags[idx]
		tagReport := TagReport{Tag: tag}
		m, found, err := r.Manifest(repo, tag)
		switch {
		case err != nil:
			tagReport.Err = err
		case !found:
			tagReport.Err = errors.New("no manifest found")
		default:
			tagReport.Digest = m.Digest()
			for _, layer := range m.Layers() {
				tagReport.Size += layer.Size()
				mutex.Lock()
				layerSizes[layer.Digest()] = layer.Size()
				mutex.Unlock()
			}
		}

		report.Tags[idx] = tagReport
	}

	if r.workers > 1 {
		pool := tunny.NewFunc(r.workers, func(payload interface{}) interface{} {
			scanTag(payload.(int))
			return nil
		})

		defer pool.Close()
		wg := &sync.WaitGroup{}
		wg.Add(len(tags))
		for idx := range tags {
			payload := idx
			go func() {
				pool.Process(payload)
				wg.Done()
			}()
		}

		wg.Wait()
	} else {
		for idx := range tags {
			scanTag(idx)
		}
	}

	for _, size := range layerSizes {
		report.Total += size
	}

	return report, nil
}

// AllSizes runs RepositorySize for every repository in the catalog and
// returns the reports in catalog order.
func (r *Registry) AllSizes() ([]*SizeReport, error) {
	repos, err := r.Repositories()
	if err != nil {
		return nil, err
	}

	reports := make([]*SizeReport, 0, len(repos))
	for _, repo := range repos {
		report, err := r.RepositorySize(repo)
		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	return reports, nil
}
