package grapheme

// defaultClassCapacities buckets payloads by byte length. A lone ASCII
// rune needs 1 byte; most emoji grapheme clusters (flags, keycaps, skin
// tone modifiers) land under 16; a multi-person ZWJ family sequence can
// run past 32. The top class covers pathological outliers before Alloc
// gives up with ErrOutOfMemory.
var defaultClassCapacities = [5]int{8, 16, 32, 64, 128}

// defaultPageSize is how many slots a class grows by when its free list is
// empty. Tests construct pools with much smaller pages (via WithPageSizes)
// to force slot reuse (and generation bumps) without allocating many slots.
const defaultPageSize = 64

type slot struct {
	payload    []byte
	refCount   uint32
	generation uint16
	inUse      bool
}

type class struct {
	capacity int
	pageSize int
	slots    []slot
	freeList []uint32
}

func (c *class) grow() {
	start := len(c.slots)
	for i := 0; i < c.pageSize; i++ {
		c.slots = append(c.slots, slot{payload: make([]byte, 0, c.capacity)})
		c.freeList = append(c.freeList, uint32(start+i))
	}
}

// Pool is an interned store of grapheme cluster payloads, addressed by
// Handle. It is not safe for concurrent use without external
// synchronisation — per the engine's single-threaded-per-owner-thread
// model, a Pool may be shared by multiple TextBuffers as long as all calls
// come from that one thread.
type Pool struct {
	classes [5]class
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithPageSizes overrides the number of slots each class grows by. Classes
// not named in sizes keep defaultPageSize. Intended for refcount-stress
// tests that want to force slot reuse (and generation bumps) quickly.
func WithPageSizes(sizes [5]int) Option {
	return func(p *Pool) {
		for i, s := range sizes {
			if s > 0 {
				p.classes[i].pageSize = s
			}
		}
	}
}

// New returns a Pool with empty, lazily-grown size classes.
func New(opts ...Option) *Pool {
	p := &Pool{}
	for i := range p.classes {
		p.classes[i] = class{capacity: defaultClassCapacities[i], pageSize: defaultPageSize}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func classFor(p *Pool, n int) (int, bool) {
	for i, c := range p.classes {
		if n <= c.capacity {
			return i, true
		}
	}
	return 0, false
}

// Alloc copies bytes into the smallest size class that fits and returns a
// fresh handle with ref_count 0. It fails with ErrOutOfMemory if bytes is
// larger than every size class.
func (p *Pool) Alloc(bytes []byte) (Handle, error) {
	classIdx, ok := classFor(p, len(bytes))
	if !ok {
		return 0, errOutOfMemory("alloc")
	}
	c := &p.classes[classIdx]
	if len(c.freeList) == 0 {
		c.grow()
	}
	slotIdx := c.freeList[len(c.freeList)-1]
	c.freeList = c.freeList[:len(c.freeList)-1]

	s := &c.slots[slotIdx]
	s.payload = append(s.payload[:0], bytes...)
	s.refCount = 0
	s.inUse = true

	return newHandle(uint8(classIdx), s.generation, slotIdx), nil
}

func (p *Pool) resolve(h Handle, op string) (*slot, error) {
	classIdx := int(h.class())
	if classIdx >= len(p.classes) {
		return nil, errInvalidHandle(op)
	}
	c := &p.classes[classIdx]
	slotIdx := h.slot()
	if slotIdx >= uint32(len(c.slots)) {
		return nil, errInvalidHandle(op)
	}
	s := &c.slots[slotIdx]
	if !s.inUse || s.generation != h.generation() {
		return nil, errWrongGeneration(op)
	}
	return s, nil
}

// Incref increments the payload's reference count.
func (p *Pool) Incref(h Handle) error {
	s, err := p.resolve(h, "incref")
	if err != nil {
		return err
	}
	s.refCount++
	return nil
}

// Decref decrements the payload's reference count. Reaching zero returns
// the slot to its class's free list and bumps its generation, so any
// handle still referencing it will fail WrongGeneration from then on.
func (p *Pool) Decref(h Handle) error {
	classIdx := int(h.class())
	if classIdx >= len(p.classes) {
		return errInvalidHandle("decref")
	}
	c := &p.classes[classIdx]
	s, err := p.resolve(h, "decref")
	if err != nil {
		return err
	}
	if s.refCount == 0 {
		return errWrongGeneration("decref")
	}
	s.refCount--
	if s.refCount == 0 {
		s.inUse = false
		s.generation++
		c.freeList = append(c.freeList, h.slot())
	}
	return nil
}

// Get returns a copy of the payload bytes for h.
func (p *Pool) Get(h Handle) ([]byte, error) {
	s, err := p.resolve(h, "get")
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(s.payload))
	copy(out, s.payload)
	return out, nil
}

// GetRefcount returns h's current reference count.
func (p *Pool) GetRefcount(h Handle) (uint32, error) {
	s, err := p.resolve(h, "getRefcount")
	if err != nil {
		return 0, err
	}
	return s.refCount, nil
}
