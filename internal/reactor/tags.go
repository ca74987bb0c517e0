package reactor

// Ring completion tags. The ring itself is tag-agnostic; this package
// is the sole owner of what each value means.
const (
	evInotify uint64 = 1
	evSignal  uint64 = 2
	evTimeout uint64 = 3
	evCancel  uint64 = 4
	evWeather uint64 = 5
)

// eventFlags is the per-iteration decoded completion set.
type eventFlags struct {
	timer    bool
	signal   bool
	override bool
	config   bool
	weather  bool
}
