package nlparse

import (
	"testing"

	"intent-resolver/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ClickSubmitButton(t *testing.T) {
	a, err := ParseInstruction("click the Submit button")
	require.NoError(t, err)

	assert.Equal(t, entity.ActionClick, a.Action)
	assert.Equal(t, "Submit", a.TargetDescription)
	assert.GreaterOrEqual(t, a.Confidence, 0.9)
	assert.Equal(t, "click the Submit button", a.RawInstruction)
}

func TestParse_TypeQuotedIntoField(t *testing.T) {
	a, err := ParseInstruction("type 'hello' in the Email field")
	require.NoError(t, err)

	assert.Equal(t, entity.ActionTypeText, a.Action)
	assert.Equal(t, "hello", a.Value)
	assert.Equal(t, "Email", a.TargetDescription)
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		a, err := ParseInstruction(in)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, ErrEmptyInstruction)
	}
}

func TestParse_Table(t *testing.T) {
	tests := []struct {
		in        string
		action    entity.ActionType
		target    string
		value     string
		minConf   float64
		direction entity.ScrollDirection
		assertion entity.AssertionType
		condition string
		modifiers []string
	}{
		{in: `click "Sign In"`, action: entity.ActionClick, target: "Sign In", minConf: 0.9},
		{in: "Click on the Login link.", action: entity.ActionClick, target: "Login", minConf: 0.9},
		{in: "tap Menu", action: entity.ActionClick, target: "Menu", minConf: 0.9},
		{in: "double-click the Row 3", action: entity.ActionDoubleClick, target: "Row 3", minConf: 0.9},
		{in: "right click on File", action: entity.ActionRightClick, target: "File", minConf: 0.9},
		{in: "shift+click Item 4", action: entity.ActionClick, target: "Item 4", modifiers: []string{"Shift"}, minConf: 0.9},
		{in: "ctrl+shift+click the Row", action: entity.ActionClick, target: "Row", modifiers: []string{"Control", "Shift"}, minConf: 0.9},
		{in: `enter "john@example.com" into the Email input`, action: entity.ActionTypeText, target: "Email", value: "john@example.com", minConf: 0.9},
		{in: "type hello into Search", action: entity.ActionTypeText, target: "Search", value: "hello", minConf: 0.8},
		{in: "fill the Name field with 'Ada'", action: entity.ActionTypeText, target: "Name", value: "Ada", minConf: 0.9},
		{in: "set Quantity to 5", action: entity.ActionTypeText, target: "Quantity", value: "5", minConf: 0.85},
		{in: "select 'Option 2' from the dropdown", action: entity.ActionSelect, target: "dropdown", value: "Option 2", minConf: 0.9},
		{in: "choose Canada from the Country dropdown", action: entity.ActionSelect, target: "Country", value: "Canada", minConf: 0.85},
		{in: "check the Remember me checkbox", action: entity.ActionCheck, target: "Remember me", minConf: 0.9},
		{in: "uncheck Newsletter", action: entity.ActionUncheck, target: "Newsletter", minConf: 0.9},
		{in: "clear the Search field", action: entity.ActionClear, target: "Search", minConf: 0.9},
		{in: "hover over the Profile menu", action: entity.ActionHover, target: "Profile menu", minConf: 0.9},
		{in: "focus on Password", action: entity.ActionFocus, target: "Password", minConf: 0.9},
		{in: "scroll down", action: entity.ActionScroll, direction: entity.ScrollDown, minConf: 0.9},
		{in: "scroll up in the Results list", action: entity.ActionScroll, target: "Results list", direction: entity.ScrollUp, minConf: 0.9},
		{in: "scroll the sidebar left", action: entity.ActionScroll, target: "sidebar", direction: entity.ScrollLeft, minConf: 0.85},
		{in: "scroll to the Footer", action: entity.ActionScroll, target: "Footer", minConf: 0.85},
		{in: "scroll to the Sign up button", action: entity.ActionScroll, target: "Sign up", minConf: 0.85},
		{in: "scroll the Pop up panel into view", action: entity.ActionScroll, target: "Pop up panel", minConf: 0.85},
		{in: "scroll down in the Sign up form", action: entity.ActionScroll, target: "Sign up form", direction: entity.ScrollDown, minConf: 0.9},
		{in: "wait for the spinner to disappear", action: entity.ActionWait, target: "spinner", condition: "disappear", minConf: 0.85},
		{in: "wait until Save is enabled", action: entity.ActionWait, target: "Save", condition: "enabled", minConf: 0.85},
		{in: "wait for Results", action: entity.ActionWait, target: "Results", minConf: 0.8},
		{in: "assert the Submit button is visible", action: entity.ActionAssert, target: "Submit", assertion: entity.AssertVisible, minConf: 0.9},
		{in: "verify that Terms is checked", action: entity.ActionAssert, target: "Terms", assertion: entity.AssertChecked, minConf: 0.9},
		{in: "check that Save is disabled", action: entity.ActionAssert, target: "Save", assertion: entity.AssertDisabled, minConf: 0.9},
		{in: "assert the Visible columns label is hidden", action: entity.ActionAssert, target: "Visible columns label", assertion: entity.AssertHidden, minConf: 0.9},
		{in: "assert the heading contains 'Welcome'", action: entity.ActionAssert, target: "heading", value: "Welcome", assertion: entity.AssertContainsText, minConf: 0.9},
		{in: "verify Status has text Ready", action: entity.ActionAssert, target: "Status", value: "Ready", assertion: entity.AssertHasText, minConf: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := ParseInstruction(tt.in)
			require.NoError(t, err)

			assert.Equal(t, tt.action, a.Action)
			assert.Equal(t, tt.target, a.TargetDescription)
			assert.Equal(t, tt.value, a.Value)
			assert.Equal(t, tt.direction, a.ScrollDirection)
			assert.Equal(t, tt.assertion, a.AssertionType)
			assert.Equal(t, tt.condition, a.WaitCondition)
			assert.Equal(t, tt.modifiers, a.Modifiers)
			assert.GreaterOrEqual(t, a.Confidence, tt.minConf)
		})
	}
}

func TestParse_Fallback(t *testing.T) {
	a, err := ParseInstruction("please click on Submit")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionClick, a.Action)
	assert.Equal(t, "Submit", a.TargetDescription)
	assert.GreaterOrEqual(t, a.Confidence, 0.5)
	assert.LessOrEqual(t, a.Confidence, 0.6)

	a, err = ParseInstruction("could you type 'secret' for the password")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionTypeText, a.Action)
	assert.Equal(t, "secret", a.Value)
	assert.Equal(t, "password", a.TargetDescription)
	assert.GreaterOrEqual(t, a.Confidence, 0.5)
	assert.LessOrEqual(t, a.Confidence, 0.6)

	a, err = ParseInstruction("type in the email field")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionTypeText, a.Action)
	assert.Equal(t, "email", a.TargetDescription)
	assert.Empty(t, a.Value)
}

func TestParseStrict_SkipsFallback(t *testing.T) {
	p := New()

	_, err := p.ParseStrict("please click on Submit")
	assert.ErrorIs(t, err, ErrNoMatch)

	a, err := p.ParseStrict("click Submit")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionClick, a.Action)
}

func TestParse_NoMatch(t *testing.T) {
	for _, in := range []string{"hello world", "what is the weather", "click"} {
		a, err := ParseInstruction(in)
		assert.Nil(t, a, in)
		assert.ErrorIs(t, err, ErrNoMatch, in)
	}
}

func TestParse_FirstRuleWins(t *testing.T) {
	rules := []Rule{
		{Name: "generic", Pattern: rx(`(?:click)\s+(.+)`), Action: entity.ActionHover, Target: 1, Confidence: 0.7},
		{Name: "click", Pattern: rx(`click\s+(.+)`), Action: entity.ActionClick, Target: 1, Confidence: 0.95},
	}
	a, err := NewWithRules(rules).Parse("click Save")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionHover, a.Action)
	assert.Equal(t, 0.7, a.Confidence)
}

func TestCleanTarget(t *testing.T) {
	assert.Equal(t, "Submit", CleanTarget("the Submit button"))
	assert.Equal(t, "Email", CleanTarget("  an   Email   field "))
	assert.Equal(t, "button", CleanTarget("the button"))
	assert.Equal(t, "Sign In", CleanTarget(`"Sign In"`))
	assert.Equal(t, "Sign In", CleanTarget(`the "Sign In" button`))
	assert.Equal(t, "Theme toggle", CleanTarget("Theme toggle"))
}

func TestValidateParsedAction(t *testing.T) {
	tests := []struct {
		name    string
		action  *entity.ParsedAction
		wantErr bool
	}{
		{"nil", nil, true},
		{"click ok", &entity.ParsedAction{Action: entity.ActionClick, TargetDescription: "Save", Confidence: 0.95}, false},
		{"click without target", &entity.ParsedAction{Action: entity.ActionClick, Confidence: 0.95}, true},
		{"scroll with direction only", &entity.ParsedAction{Action: entity.ActionScroll, ScrollDirection: entity.ScrollDown, Confidence: 0.9}, false},
		{"scroll with nothing", &entity.ParsedAction{Action: entity.ActionScroll, Confidence: 0.9}, true},
		{"type without value", &entity.ParsedAction{Action: entity.ActionTypeText, TargetDescription: "Email", Confidence: 0.9}, true},
		{"select without value", &entity.ParsedAction{Action: entity.ActionSelect, TargetDescription: "Country", Confidence: 0.9}, true},
		{"low confidence", &entity.ParsedAction{Action: entity.ActionClick, TargetDescription: "Save", Confidence: 0.4}, true},
		{"assert without type", &entity.ParsedAction{Action: entity.ActionAssert, TargetDescription: "Save", Confidence: 0.9}, true},
		{"unknown action", &entity.ParsedAction{Action: "teleport", TargetDescription: "Save", Confidence: 0.9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParsedAction(tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAction)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDescribeAction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"click the Submit button", `Click on "Submit"`},
		{"shift+click Row", `Shift+Click on "Row"`},
		{"type 'hello' in the Email field", `Type "hello" into "Email"`},
		{"select 'Red' from Color", `Select "Red" from "Color"`},
		{"scroll down", "Scroll down"},
		{"scroll to Footer", `Scroll to "Footer"`},
		{"wait for the spinner to disappear", `Wait for "spinner" (disappear)`},
		{"assert Save is enabled", `Assert "Save" is enabled`},
		{"assert Title contains 'Hi'", `Assert "Title" contains "Hi"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := ParseInstruction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, DescribeAction(a))
		})
	}
	assert.Empty(t, DescribeAction(nil))
}

func TestSplitCompoundInstruction(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"click Login", []string{"click Login"}},
		{"type 'bob' in Username and click Next", []string{"type 'bob' in Username", "click Next"}},
		{"click Accept then wait for Dashboard", []string{"click Accept", "wait for Dashboard"}},
		{"check Terms, then click Continue", []string{"check Terms", "click Continue"}},
		{"fill Name with 'Ada', fill Email with 'a@b.c', click Save", []string{"fill Name with 'Ada'", "fill Email with 'a@b.c'", "click Save"}},
		{"click Terms and Conditions", []string{"click Terms and Conditions"}},
		{"type 'salt and pepper' in Search and then click Go", []string{"type 'salt and pepper' in Search", "click Go"}},
		{"scroll down; click More", []string{"scroll down", "click More"}},
		{"  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCompoundInstruction(tt.in))
		})
	}
}
