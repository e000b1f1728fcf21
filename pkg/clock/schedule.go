package clock

// Schedule registers cb to fire once the clock reaches due (seconds since
// origin). A due in the past fires on the next processed tick. The returned
// Key is the only way to address the registration afterwards.
func (c *Clock) Schedule(due float64, cb Callback) Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	k := Key{Seq: c.seq, Due: due}
	c.cbs[k] = cb
	return k
}

// ScheduleIn registers cb relative to the current clock reading.
func (c *Clock) ScheduleIn(delay float64, cb Callback) Key {
	return c.Schedule(c.Now()+delay, cb)
}

// Update replaces the callback behind k. It reports whether k was still
// registered; a fired or removed key is gone for good.
func (c *Clock) Update(k Key, cb Callback) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cbs[k]; !ok {
		return false
	}
	c.cbs[k] = cb
	return true
}

// Remove drops the registration behind k, reporting whether it was present.
// Removing an already-fired key is a harmless no-op.
func (c *Clock) Remove(k Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cbs[k]; !ok {
		return false
	}
	delete(c.cbs, k)
	return true
}

func (c *Clock) Has(k Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cbs[k]
	return ok
}

func (c *Clock) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cbs)
}

// Clear drops every pending registration.
func (c *Clock) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.cbs)
}
