package offer

import "sync"

// ResultSet accumulates resolved offers for a whole campaign. It only grows;
// Append is safe for concurrent callers.
type ResultSet struct {
	mu     sync.Mutex
	offers []ResolvedOffer
}

func (s *ResultSet) Append(offers ...ResolvedOffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = append(s.offers, offers...)
}

func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offers)
}

// Offers returns a snapshot of the accumulated offers.
func (s *ResultSet) Offers() []ResolvedOffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ResolvedOffer, len(s.offers))
	copy(out, s.offers)
	return out
}

func (s *ResultSet) Records() []Record {
	offers := s.Offers()
	out := make([]Record, len(offers))
	for i, o := range offers {
		out[i] = o.Record()
	}
	return out
}
