package ui

type tableController interface {
	MoveUp()
	MoveDown()
	JumpToTop()
	JumpToBottom()
}

// listCursor tracks the selected row of a read-only table.
type listCursor struct {
	n      int
	cursor int
	offset int
	height int
}

func (c *listCursor) reset(n int) {
	c.n = n
	if c.cursor >= n {
		c.cursor = max(0, n-1)
	}
	c.offset = scrollWindow(c.cursor, c.offset, c.height, n)
}

func (c *listCursor) MoveDown() {
	if c.cursor < c.n-1 {
		c.cursor++
		c.offset = scrollWindow(c.cursor, c.offset, c.height, c.n)
	}
}

func (c *listCursor) MoveUp() {
	if c.cursor > 0 {
		c.cursor--
		c.offset = scrollWindow(c.cursor, c.offset, c.height, c.n)
	}
}

func (c *listCursor) JumpToTop() {
	c.cursor = 0
	c.offset = 0
}

func (c *listCursor) JumpToBottom() {
	if c.n > 0 {
		c.cursor = c.n - 1
		c.offset = scrollWindow(c.cursor, c.offset, c.height, c.n)
	}
}

func (c *listCursor) visible(height int) (from, to int) {
	c.height = max(1, height)
	c.offset = scrollWindow(c.cursor, c.offset, c.height, c.n)
	return c.offset, min(c.n, c.offset+c.height)
}
