package entity

// ElementKind tags which variant an Element carries.
type ElementKind int

const (
	ElementRegistered ElementKind = iota + 1
	ElementDiscovered
)

func (k ElementKind) String() string {
	switch k {
	case ElementRegistered:
		return "registered"
	case ElementDiscovered:
		return "discovered"
	default:
		return "unknown"
	}
}

// RegisteredElement is an element the application registered explicitly.
// Its state is read through StateFunc so that every index rebuild sees live values.
type RegisteredElement struct {
	ID        string
	Type      string
	Label     string
	TagName   string
	Role      string
	Actions   []string
	Attrs     map[string]string
	StateFunc func() ElementState
}

// DiscoveredElement is a plain snapshot produced by scanning a page.
type DiscoveredElement struct {
	ID             string
	Type           string
	TagName        string
	Role           string
	AccessibleName string
	AriaLabel      string
	LabelledBy     string
	LabelText      string
	Placeholder    string
	Title          string
	Name           string
	Actions        []string
	State          ElementState
}

// Element is exactly one of Registered or Discovered, selected by Kind.
type Element struct {
	Kind       ElementKind
	Registered *RegisteredElement
	Discovered *DiscoveredElement
}

func NewRegistered(el RegisteredElement) Element {
	return Element{Kind: ElementRegistered, Registered: &el}
}

func NewDiscovered(el DiscoveredElement) Element {
	return Element{Kind: ElementDiscovered, Discovered: &el}
}

func (e Element) ID() string {
	switch e.Kind {
	case ElementRegistered:
		if e.Registered != nil {
			return e.Registered.ID
		}
	case ElementDiscovered:
		if e.Discovered != nil {
			return e.Discovered.ID
		}
	}
	return ""
}

// ElementAnnotation is externally supplied metadata that widens matching for one element.
type ElementAnnotation struct {
	ElementID   string   `json:"elementId" yaml:"elementId"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// SearchableElement is the derived, read-only record the search engine ranks.
type SearchableElement struct {
	ID             string       `json:"id"`
	Kind           ElementKind  `json:"-"`
	Type           string       `json:"type"`
	TagName        string       `json:"tagName"`
	Role           string       `json:"role,omitempty"`
	Label          string       `json:"label,omitempty"`
	AccessibleName string       `json:"accessibleName,omitempty"`
	LabelledBy     string       `json:"labelledBy,omitempty"`
	LabelText      string       `json:"labelText,omitempty"`
	Placeholder    string       `json:"placeholder,omitempty"`
	Title          string       `json:"title,omitempty"`
	Text           string       `json:"text,omitempty"`
	Value          string       `json:"value,omitempty"`
	Aliases        []string     `json:"aliases"`
	Description    string       `json:"description"`
	Tags           []string     `json:"tags,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	Actions        []string     `json:"actions"`
	State          ElementState `json:"state"`
	Registered     bool         `json:"registered"`
	Order          int          `json:"-"`
}
