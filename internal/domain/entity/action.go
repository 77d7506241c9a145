package entity

type ActionType string

const (
	ActionClick       ActionType = "click"
	ActionDoubleClick ActionType = "doubleClick"
	ActionRightClick  ActionType = "rightClick"
	ActionTypeText    ActionType = "type"
	ActionSelect      ActionType = "select"
	ActionCheck       ActionType = "check"
	ActionUncheck     ActionType = "uncheck"
	ActionClear       ActionType = "clear"
	ActionHover       ActionType = "hover"
	ActionFocus       ActionType = "focus"
	ActionScroll      ActionType = "scroll"
	ActionWait        ActionType = "wait"
	ActionAssert      ActionType = "assert"
)

func (a ActionType) String() string {
	return string(a)
}

type ScrollDirection string

const (
	ScrollUp    ScrollDirection = "up"
	ScrollDown  ScrollDirection = "down"
	ScrollLeft  ScrollDirection = "left"
	ScrollRight ScrollDirection = "right"
)

type AssertionType string

const (
	AssertVisible      AssertionType = "visible"
	AssertHidden       AssertionType = "hidden"
	AssertEnabled      AssertionType = "enabled"
	AssertDisabled     AssertionType = "disabled"
	AssertChecked      AssertionType = "checked"
	AssertUnchecked    AssertionType = "unchecked"
	AssertFocused      AssertionType = "focused"
	AssertContainsText AssertionType = "containsText"
	AssertHasText      AssertionType = "hasText"
)

type ParsedAction struct {
	Action            ActionType      `json:"action"`
	TargetDescription string          `json:"targetDescription"`
	Value             string          `json:"value,omitempty"`
	Modifiers         []string        `json:"modifiers,omitempty"`
	ScrollDirection   ScrollDirection `json:"scrollDirection,omitempty"`
	WaitCondition     string          `json:"waitCondition,omitempty"`
	AssertionType     AssertionType   `json:"assertionType,omitempty"`
	RawInstruction    string          `json:"rawInstruction"`
	Confidence        float64         `json:"confidence"`
}
