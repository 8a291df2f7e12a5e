package chromium

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/bnema/followcheck/internal/ports"
)

type Element struct {
	el *rod.Element
}

var _ ports.Element = (*Element)(nil)

func wrap(els rod.Elements) []ports.Element {
	out := make([]ports.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{el: el})
	}
	return out
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	value, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (e *Element) HTML(ctx context.Context) (string, error) {
	return e.el.Context(ctx).HTML()
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	el := e.el.Context(ctx)
	disabled, err := el.Property("disabled")
	if err != nil {
		return false, err
	}
	if disabled.Bool() {
		return false, nil
	}
	aria, err := el.Attribute("aria-disabled")
	if err != nil {
		return false, err
	}
	return aria == nil || *aria != "true", nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *Element) Fill(ctx context.Context, value string) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select field text: %w", err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input field: %w", err)
	}
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	return e.el.Context(ctx).ScrollIntoView()
}

func (e *Element) ScrollBy(ctx context.Context, deltaY int) error {
	_, err := e.el.Context(ctx).Eval(`(dy) => this.scrollBy(0, dy)`, deltaY)
	return err
}

func (e *Element) Find(ctx context.Context, selector string) ([]ports.Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", selector, err)
	}
	return wrap(els), nil
}
