package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/alias"
	"intent-resolver/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var (
	_ output.ActionBackend    = (*BrowserAdapter)(nil)
	_ output.ElementInventory = (*BrowserAdapter)(nil)
	_ output.ScreenshotPort   = (*BrowserAdapter)(nil)
)

var (
	ErrUnknownElement    = errors.New("unknown element")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrUnsupportedWait   = errors.New("unsupported wait condition")
	ErrBrowserClosed     = errors.New("browser is closed")
)

const (
	defaultSlowMotion  = 0
	defaultTimeout     = 10 * time.Second
	defaultMaxElements = 500
	screenshotMaxWidth = 1024
	idleWait           = time.Second
)

// Селектор кандидатов; роли дополнительно фильтруются в Go.
const candidateSelector = "button, a[href], input:not([type='hidden']), select, textarea, summary, dialog, " +
	"[role], [onclick], [contenteditable='true'], [tabindex]:not([tabindex='-1'])"

type BrowserConfig struct {
	Headless    bool
	SlowMotion  time.Duration
	Timeout     time.Duration
	NoSandbox   bool
	DevTools    bool
	MaxElements int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:    true,
		SlowMotion:  defaultSlowMotion,
		Timeout:     defaultTimeout,
		NoSandbox:   false,
		DevTools:    false,
		MaxElements: defaultMaxElements,
	}
}

// BrowserAdapter управляет одной страницей Chrome. Elements() пересобирает
// таблицу id → *rod.Element; действия адресуются по id из последнего снимка.
type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	maxElems int

	mu      sync.Mutex
	handles map[string]*rod.Element
	closed  bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxElements <= 0 {
		cfg.MaxElements = defaultMaxElements
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		maxElems: cfg.MaxElements,
		handles:  make(map[string]*rod.Element),
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if !b.IsReady() {
		return ErrBrowserClosed
	}
	page := b.page.Context(ctx).Timeout(b.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", err)
	}
	b.page.Context(ctx).WaitIdle(idleWait)

	b.mu.Lock()
	b.handles = make(map[string]*rod.Element)
	b.mu.Unlock()
	return nil
}

// SetContent загружает HTML напрямую, без сервера.
func (b *BrowserAdapter) SetContent(ctx context.Context, html string) error {
	if !b.IsReady() {
		return ErrBrowserClosed
	}
	if err := b.page.Context(ctx).Timeout(b.timeout).SetDocumentContent(html); err != nil {
		return fmt.Errorf("set content failed: %w", err)
	}
	b.mu.Lock()
	b.handles = make(map[string]*rod.Element)
	b.mu.Unlock()
	return nil
}

// elementInfo is what describeJS returns for one element.
type elementInfo struct {
	ID          string   `json:"id"`
	Tag         string   `json:"tag"`
	Type        string   `json:"type"`
	Role        string   `json:"role"`
	AriaLabel   string   `json:"ariaLabel"`
	LabelledBy  string   `json:"labelledBy"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder"`
	Title       string   `json:"title"`
	Name        string   `json:"name"`
	Text        string   `json:"text"`
	Value       string   `json:"value"`
	Visible     bool     `json:"visible"`
	Enabled     bool     `json:"enabled"`
	Focused     bool     `json:"focused"`
	HasChecked  bool     `json:"hasChecked"`
	Checked     bool     `json:"checked"`
	Selected    []string `json:"selected"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	W           float64  `json:"w"`
	H           float64  `json:"h"`
}

const describeJS = `() => {
	const el = this;
	const clean = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const byIds = (ids) => (ids || '').split(/\s+/)
		.map((id) => id && document.getElementById(id))
		.filter(Boolean)
		.map((n) => clean(n.innerText || n.textContent))
		.join(' ');
	const r = el.getBoundingClientRect();
	const st = window.getComputedStyle(el);
	const tag = el.tagName.toLowerCase();
	const field = tag === 'input' || tag === 'select' || tag === 'textarea';
	const hasChecked = (tag === 'input' && (el.type === 'checkbox' || el.type === 'radio')) || el.hasAttribute('aria-checked');
	return {
		id: el.id || '',
		tag: tag,
		type: (el.getAttribute('type') || '').toLowerCase(),
		role: (el.getAttribute('role') || '').toLowerCase(),
		ariaLabel: el.getAttribute('aria-label') || '',
		labelledBy: byIds(el.getAttribute('aria-labelledby')),
		label: el.labels && el.labels.length ? clean(el.labels[0].innerText) : '',
		placeholder: el.getAttribute('placeholder') || '',
		title: el.getAttribute('title') || '',
		name: el.getAttribute('name') || '',
		text: field ? '' : clean(el.innerText),
		value: field && typeof el.value === 'string' ? el.value : '',
		visible: r.width > 0 && r.height > 0 && st.visibility !== 'hidden' && st.display !== 'none',
		enabled: !el.disabled && el.getAttribute('aria-disabled') !== 'true',
		focused: document.activeElement === el,
		hasChecked: hasChecked,
		checked: tag === 'input' ? !!el.checked : el.getAttribute('aria-checked') === 'true',
		selected: tag === 'select' ? Array.from(el.selectedOptions).map((o) => clean(o.text)) : [],
		x: r.x, y: r.y, w: r.width, h: r.height,
	};
}`

// Elements снимает все интерактивные элементы страницы в порядке документа.
func (b *BrowserAdapter) Elements(ctx context.Context) ([]entity.Element, error) {
	if !b.IsReady() {
		return nil, ErrBrowserClosed
	}

	found, err := b.page.Context(ctx).Timeout(b.timeout).Elements(candidateSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}

	handles := make(map[string]*rod.Element, len(found))
	result := make([]entity.Element, 0, len(found))
	counter := 0

	for _, el := range found {
		if len(result) >= b.maxElems {
			break
		}
		info, err := describe(el)
		if err != nil {
			continue
		}
		if info.Role != "" && !isNativeControl(info.Tag) && !alias.IsInteractiveRole(info.Role) {
			continue
		}

		id := info.ID
		if id == "" || handles[id] != nil {
			for {
				counter++
				id = fmt.Sprintf("ui-%04d", counter)
				if handles[id] == nil {
					break
				}
			}
		}
		handles[id] = el
		result = append(result, entity.NewDiscovered(toDiscovered(id, info)))
	}

	b.mu.Lock()
	b.handles = handles
	b.mu.Unlock()

	return result, nil
}

func describe(el *rod.Element) (elementInfo, error) {
	var info elementInfo
	res, err := el.Eval(describeJS)
	if err != nil {
		return info, err
	}
	if err := res.Value.Unmarshal(&info); err != nil {
		return info, fmt.Errorf("failed to decode element info: %w", err)
	}
	return info, nil
}

func isNativeControl(tag string) bool {
	switch tag {
	case "button", "a", "input", "select", "textarea", "summary", "dialog":
		return true
	}
	return false
}

func toDiscovered(id string, info elementInfo) entity.DiscoveredElement {
	elemType := info.Type
	switch {
	case info.Tag == "input" && elemType == "":
		elemType = "text"
	case info.Tag == "a":
		elemType = "link"
	case info.Tag != "input":
		elemType = info.Tag
		if !isNativeControl(info.Tag) && info.Role != "" {
			elemType = info.Role
		}
	}

	state := entity.ElementState{
		Visible:         info.Visible,
		Enabled:         info.Enabled,
		Focused:         info.Focused,
		Value:           info.Value,
		TextContent:     info.Text,
		SelectedOptions: info.Selected,
		Rect:            entity.Rect{X: info.X, Y: info.Y, Width: info.W, Height: info.H},
	}
	if info.HasChecked {
		checked := info.Checked
		state.Checked = &checked
	}

	accessible := firstNonEmpty(info.AriaLabel, info.LabelledBy, info.Label, info.Text, info.Title, info.Placeholder)

	return entity.DiscoveredElement{
		ID:             id,
		Type:           elemType,
		TagName:        info.Tag,
		Role:           info.Role,
		AccessibleName: accessible,
		AriaLabel:      info.AriaLabel,
		LabelledBy:     info.LabelledBy,
		LabelText:      info.Label,
		Placeholder:    info.Placeholder,
		Title:          info.Title,
		Name:           info.Name,
		State:          state,
	}
}

func (b *BrowserAdapter) handle(elementID string) (*rod.Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrowserClosed
	}
	el, ok := b.handles[elementID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, elementID)
	}
	return el, nil
}

// ExecuteAction выполняет действие. Ошибки самого действия (элемент перекрыт,
// отсоединён от DOM) возвращаются в ActionResult.Error, а не как error.
func (b *BrowserAdapter) ExecuteAction(ctx context.Context, elementID string, req output.ActionRequest) (*output.ActionResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = b.timeout
	}

	if elementID == "" {
		if req.Action != entity.ActionScroll {
			return nil, fmt.Errorf("%w: %s needs an element", ErrUnknownElement, req.Action)
		}
		if !b.IsReady() {
			return nil, ErrBrowserClosed
		}
		if err := b.scrollPage(ctx, req.ScrollDirection); err != nil {
			return &output.ActionResult{Success: false, Error: err.Error()}, nil
		}
		return &output.ActionResult{Success: true}, nil
	}

	handle, err := b.handle(elementID)
	if err != nil {
		return nil, err
	}
	el := handle.Context(ctx).Timeout(timeout)

	if err := b.perform(ctx, el, req); err != nil {
		if errors.Is(err, ErrUnsupportedAction) {
			return nil, err
		}
		return &output.ActionResult{Success: false, Error: err.Error()}, nil
	}

	b.page.Context(ctx).WaitIdle(idleWait)

	result := &output.ActionResult{Success: true}
	if info, err := describe(handle.Context(ctx)); err == nil {
		st := toDiscovered(elementID, info).State
		result.ElementState = &st
	}
	return result, nil
}

const clearJS = `() => {
	this.value = '';
	this.dispatchEvent(new Event('input', {bubbles: true}));
	this.dispatchEvent(new Event('change', {bubbles: true}));
}`

func (b *BrowserAdapter) perform(ctx context.Context, el *rod.Element, req output.ActionRequest) error {
	switch req.Action {
	case entity.ActionHover, entity.ActionScroll, entity.ActionFocus:
	default:
		disabled, err := el.Disabled()
		if err != nil {
			return err
		}
		if disabled {
			return errors.New("element is disabled")
		}
	}

	switch req.Action {
	case entity.ActionClick:
		return b.withModifiers(ctx, req.Modifiers, func() error {
			return el.Click(proto.InputMouseButtonLeft, 1)
		})
	case entity.ActionDoubleClick:
		return el.Click(proto.InputMouseButtonLeft, 2)
	case entity.ActionRightClick:
		return el.Click(proto.InputMouseButtonRight, 1)
	case entity.ActionHover:
		return el.Hover()
	case entity.ActionFocus:
		return el.Focus()
	case entity.ActionTypeText:
		if _, err := el.Eval(clearJS); err != nil {
			return err
		}
		return el.Input(req.Value)
	case entity.ActionClear:
		_, err := el.Eval(clearJS)
		return err
	case entity.ActionSelect:
		return el.Select([]string{req.Value}, true, rod.SelectorTypeText)
	case entity.ActionCheck, entity.ActionUncheck:
		res, err := el.Eval(`() => this.type === 'checkbox' || this.type === 'radio' ? this.checked : this.getAttribute('aria-checked') === 'true'`)
		if err != nil {
			return err
		}
		if res.Value.Bool() == (req.Action == entity.ActionCheck) {
			return nil
		}
		return el.Click(proto.InputMouseButtonLeft, 1)
	case entity.ActionScroll:
		if req.ScrollDirection == "" {
			return el.ScrollIntoView()
		}
		dx, dy := scrollDelta(req.ScrollDirection)
		_, err := el.Eval(`(dx, dy) => this.scrollBy(dx, dy)`, dx, dy)
		return err
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedAction, req.Action)
}

var modifierKeys = map[string]input.Key{
	"Control": input.ControlLeft,
	"Shift":   input.ShiftLeft,
	"Alt":     input.AltLeft,
	"Meta":    input.MetaLeft,
}

func (b *BrowserAdapter) withModifiers(ctx context.Context, modifiers []string, fn func() error) error {
	kb := b.page.Context(ctx).Keyboard
	var pressed []input.Key
	defer func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			_ = kb.Release(pressed[i])
		}
	}()

	for _, m := range modifiers {
		key, ok := modifierKeys[m]
		if !ok {
			return fmt.Errorf("%w: modifier %q", ErrUnsupportedAction, m)
		}
		if err := kb.Press(key); err != nil {
			return fmt.Errorf("failed to press %s: %w", m, err)
		}
		pressed = append(pressed, key)
	}
	return fn()
}

func scrollDelta(d entity.ScrollDirection) (float64, float64) {
	const step = 400
	switch d {
	case entity.ScrollUp:
		return 0, -step
	case entity.ScrollLeft:
		return -step, 0
	case entity.ScrollRight:
		return step, 0
	}
	return 0, step
}

func (b *BrowserAdapter) scrollPage(ctx context.Context, d entity.ScrollDirection) error {
	dx, dy := scrollDelta(d)
	if _, err := b.page.Context(ctx).Eval(`(dx, dy) => window.scrollBy(dx, dy)`, dx, dy); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	b.page.Context(ctx).WaitIdle(idleWait)
	return nil
}

var waitScripts = map[string]string{
	"checked":   `() => this.checked === true || this.getAttribute('aria-checked') === 'true'`,
	"unchecked": `() => !(this.checked === true || this.getAttribute('aria-checked') === 'true')`,
	"disabled":  `() => this.disabled === true || this.getAttribute('aria-disabled') === 'true'`,
	"focused":   `() => document.activeElement === this`,
}

// WaitFor ждёт условия на элементе до opts.Timeout.
func (b *BrowserAdapter) WaitFor(ctx context.Context, elementID string, opts output.WaitOptions) (*output.WaitResult, error) {
	handle, err := b.handle(elementID)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = b.timeout
	}
	el := handle.Context(ctx).Timeout(timeout)

	condition := strings.ToLower(strings.TrimSpace(opts.Condition))
	switch condition {
	case "", "visible", "appear", "shown", "present":
		err = el.WaitVisible()
	case "hidden", "invisible", "disappear", "gone":
		err = el.WaitInvisible()
	case "enabled", "clickable":
		err = el.WaitEnabled()
	default:
		js, ok := waitScripts[condition]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedWait, opts.Condition)
		}
		err = el.Wait(rod.Eval(js))
	}

	if err != nil {
		return &output.WaitResult{Met: false, Error: fmt.Sprintf("wait for %s: %v", condition, err)}, nil
	}

	result := &output.WaitResult{Met: true}
	if info, err := describe(handle.Context(ctx)); err == nil {
		st := toDiscovered(elementID, info).State
		result.State = &st
	}
	return result, nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if !b.IsReady() {
		return nil, ErrBrowserClosed
	}
	imgBytes, err := b.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > screenshotMaxWidth {
		img = imaging.Resize(img, screenshotMaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if !b.IsReady() {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.handles = nil

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
