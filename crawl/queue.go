package crawl

// Frontier is the breadth-first work list of a site crawl. It admits each
// in-scope page once and stops admitting pages at its limit.
type Frontier struct {
	scope *Scope
	limit int
	pages []string
	seen  map[string]struct{}
	next  int
}

// NewFrontier creates an empty Frontier that admits at most limit pages.
func NewFrontier(scope *Scope, limit int) *Frontier {
	return &Frontier{scope: scope, limit: limit, seen: make(map[string]struct{})}
}

// Offer admits link when it is in scope, unseen, and the frontier has room.
func (f *Frontier) Offer(link string) bool {
	if f.Full() {
		return false
	}
	key, ok := f.scope.Key(link)
	if !ok {
		return false
	}
	if _, dup := f.seen[key]; dup {
		return false
	}
	f.seen[key] = struct{}{}
	f.pages = append(f.pages, key)
	return true
}

// Full reports whether the page limit is reached.
func (f *Frontier) Full() bool {
	return len(f.pages) >= f.limit
}

// Pop returns the oldest page not yet handed out.
func (f *Frontier) Pop() (string, bool) {
	if f.next >= len(f.pages) {
		return "", false
	}
	page := f.pages[f.next]
	f.next++
	return page, true
}

// Pages returns every admitted page in admission order.
func (f *Frontier) Pages() []string {
	return f.pages
}
