package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/slotwatch/slotwatch/internal/config"
	"github.com/hazyhaar/slotwatch/slotwatch/internal/page"
)

// Navigate loads url in the managed page and waits for the load event.
func (m *Manager) Navigate(ctx context.Context, url string) error {
	p, err := m.active(ctx)
	if err != nil {
		return err
	}
	m.cfg.Logger.Info("browser: navigating", "url", url)

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.StepTimeout)
	defer cancel()

	if err := p.Context(navCtx).Navigate(url); err != nil {
		return m.structureErr(ctx, "navigate", "", url, err)
	}
	if err := p.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", url, "error", err)
	}

	m.mu.Lock()
	m.url = url
	m.mu.Unlock()
	return m.settle(ctx)
}

// ClickIfVisible clicks selector when it is present and visible. Absence is
// not an error: challenge widgets only show up some of the time.
func (m *Manager) ClickIfVisible(ctx context.Context, selector string) error {
	p, err := m.active(ctx)
	if err != nil {
		return err
	}
	has, el, err := p.Has(selector)
	if err != nil {
		return m.structureErr(ctx, "gate", selector, "", err)
	}
	if !has {
		return nil
	}
	visible, err := el.Visible()
	if err != nil || !visible {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		m.cfg.Logger.Warn("browser: gate click failed", "selector", selector, "error", err)
		return nil
	}
	m.cfg.Logger.Info("browser: gate clicked", "selector", selector)
	return m.settle(ctx)
}

// Await blocks until selector appears or timeout elapses.
func (m *Manager) Await(ctx context.Context, selector string, timeout time.Duration) error {
	p, err := m.active(ctx)
	if err != nil {
		return err
	}
	if _, err := p.Timeout(timeout).Element(selector); err != nil {
		return m.structureErr(ctx, "gate", selector, "", err)
	}
	return nil
}

// SelectOption picks the <option> of field whose visible text equals text.
// A missing element is a page structure error; a text the element does not
// offer is a configuration error listing the live choices.
func (m *Manager) SelectOption(ctx context.Context, field, text string) error {
	p, err := m.active(ctx)
	if err != nil {
		return err
	}

	el, err := p.Timeout(m.cfg.StepTimeout).Element(field)
	if err != nil {
		return m.structureErr(ctx, "select", field, "", err)
	}
	el = el.CancelTimeout()

	choices, err := optionTexts(el)
	if err != nil {
		return m.structureErr(ctx, "select", field, "", err)
	}
	want := strings.TrimSpace(text)
	idx := optionIndex(choices, want)
	if idx < 0 {
		return &config.ConfigError{
			Field:  field,
			Reason: fmt.Sprintf("option %q not offered by the page (live choices: %q)", want, choices),
		}
	}

	// rod's Select matches by substring; set the index found above instead.
	got, err := selectIndex(el, idx)
	if err != nil {
		return m.structureErr(ctx, "select", field, "", err)
	}
	if got != want {
		return m.structureErr(ctx, "select", field, "",
			fmt.Errorf("selected %q instead of %q", got, want))
	}
	m.cfg.Logger.Debug("browser: option selected", "field", field, "text", want, "index", idx)
	return m.settle(ctx)
}

// ReadState serialises the DOM and classifies the result element.
func (m *Manager) ReadState(ctx context.Context) (page.Reading, error) {
	p, err := m.active(ctx)
	if err != nil {
		return page.Reading{}, err
	}
	if _, err := p.Timeout(m.cfg.StepTimeout).Element(m.cfg.Result); err != nil {
		return page.Reading{}, m.structureErr(ctx, "read", m.cfg.Result, "", err)
	}
	html, err := p.HTML()
	if err != nil {
		return page.Reading{}, m.structureErr(ctx, "read", m.cfg.Result, "", err)
	}
	r, err := page.Classify(html, m.cfg.Result, m.cfg.Unavailable)
	if err != nil {
		var se *page.StructureError
		if errors.As(err, &se) {
			se.URL = m.currentURL()
		}
		return page.Reading{}, err
	}
	return r, nil
}

func (m *Manager) currentURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.url
}

// structureErr wraps a Rod failure. Cancellation of the run is returned
// as is so callers can tell shutdown from a broken page.
func (m *Manager) structureErr(ctx context.Context, step, selector, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if url == "" {
		url = m.currentURL()
	}
	return &page.StructureError{Step: step, Selector: selector, URL: url, Err: err}
}

func optionTexts(el *rod.Element) ([]string, error) {
	res, err := el.Eval(`() => this.options ? Array.from(this.options).map(o => o.text.trim()) : null`)
	if err != nil {
		return nil, err
	}
	if res.Value.Nil() {
		return nil, fmt.Errorf("element is not a <select>")
	}
	arr := res.Value.Arr()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.Str())
	}
	return out, nil
}

// optionIndex returns the index of the first choice equal to want, or -1.
func optionIndex(choices []string, want string) int {
	want = strings.TrimSpace(want)
	for i, c := range choices {
		if c == want {
			return i
		}
	}
	return -1
}

// selectIndex selects option i, fires the events a user selection fires and
// returns the text the <select> now reports as selected.
func selectIndex(el *rod.Element, i int) (string, error) {
	res, err := el.Eval(`(i) => {
		this.selectedIndex = i;
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
		const o = this.selectedOptions[0];
		return o ? o.text.trim() : "";
	}`, i)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}
