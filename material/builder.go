package material

import (
	"log/slog"
)

// Build converts tokens into items attached, in order, under root.
func Build(root *Item, tokens []*Token) error {
	for _, tok := range tokens {
		item, err := buildItem(tok)
		if err != nil {
			return err
		}

		if err := root.AddChild(item); err != nil {
			return err
		}
	}

	return nil
}

// buildItem constructs the item for tok and, recursively, its body.
func buildItem(tok *Token) (*Item, error) {
	if tok == nil || tok.Type == "" {
		e := ErrStructure.With(slog.String("reason", "token has no kind"))
		if tok != nil {
			e = e.WithPosition(tok.Pos).
				With(slog.String("token", tok.Kind.String()))
		}

		return nil, e
	}

	item := NewItem(tok.Type)
	item.pos = tok.Pos
	item.block = tok.Kind == TokenBlock

	if tok.HasName {
		item.SetName(tok.Name)
	}

	item.AddArgument(tok.Args...)

	for _, base := range tok.Bases {
		item.AddBase(base)
	}

	for _, sub := range tok.Body {
		child, err := buildItem(sub)
		if err != nil {
			return nil, err
		}

		if err := item.AddChild(child); err != nil {
			return nil, err
		}
	}

	return item, nil
}
