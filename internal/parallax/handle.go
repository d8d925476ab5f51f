package parallax

// ContentDescriptor is the payload bound to an ordinary item.
type ContentDescriptor struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageRef string `json:"image_ref"`
	Caption  string `json:"caption,omitempty"`
}

// Kind distinguishes dataset items from the trailing sentinel.
type Kind int

const (
	KindOrdinary Kind = iota
	KindSentinel
)

func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindSentinel:
		return "sentinel"
	default:
		return "unknown"
	}
}

// Handle is a recyclable item instance. While visible it belongs to the
// layout's window, while idle to the Pool. The sentinel handle is owned by
// the Layout itself and never enters the pool.
type Handle struct {
	id      int
	kind    Kind
	index   int
	content ContentDescriptor

	top    int
	bottom int
	scale  float64
	alpha  int
}

func (h *Handle) ID() int                    { return h.id }
func (h *Handle) Kind() Kind                 { return h.kind }
func (h *Handle) Index() int                 { return h.index }
func (h *Handle) Content() ContentDescriptor { return h.content }
func (h *Handle) Top() int                   { return h.top }
func (h *Handle) Bottom() int                { return h.bottom }
func (h *Handle) Scale() float64             { return h.scale }
func (h *Handle) Alpha() int                 { return h.alpha }

func (h *Handle) bind(index int, content ContentDescriptor) {
	h.index = index
	h.content = content
}

func (h *Handle) place(top, bottom int, scale float64, alpha int) {
	h.top = top
	h.bottom = bottom
	h.scale = scale
	h.alpha = alpha
}

// Placement is the committed position of one visible item.
type Placement struct {
	Index    int
	HandleID int
	Kind     Kind
	Content  ContentDescriptor
	Top      int
	Height   int
	Scale    float64
	Alpha    int
}

// Bottom is the first pixel row below the item.
func (p Placement) Bottom() int { return p.Top + p.Height }
