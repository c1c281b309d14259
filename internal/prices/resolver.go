package prices

// SelectHighestPriority returns the record with the greatest priority. When several share
// that priority the first one in slice order wins, so a stable input order yields a stable
// answer. An empty or nil slice yields ErrNotFound.
func SelectHighestPriority(records []Price) (Price, error) {
	if len(records) == 0 {
		return Price{}, ErrNotFound
	}

	best := 0
	for i := 1; i < len(records); i++ {
		if records[i].Priority > records[best].Priority {
			best = i
		}
	}
	return records[best], nil
}
