package queue

import "github.com/ILYXAAA/SecretsScanner-service/internal/entity"

// Kind distinguishes the three queue item shapes of spec.md §4.5.
type Kind string

const (
	KindSingle Kind = "single_scan"
	KindMulti  Kind = "multi_scan"
	KindLocal  Kind = "local_scan"
)

// Item is the tagged union the dispatcher pops from the FIFO queue. Only the
// field matching Kind is populated.
type Item struct {
	Kind  Kind
	Job   entity.ScanJob     // KindSingle, KindLocal
	Multi entity.MultiScanJob // KindMulti
}

func SingleItem(job entity.ScanJob) Item { return Item{Kind: KindSingle, Job: job} }
func LocalItem(job entity.ScanJob) Item  { return Item{Kind: KindLocal, Job: job} }
func MultiItem(multi entity.MultiScanJob) Item { return Item{Kind: KindMulti, Multi: multi} }
