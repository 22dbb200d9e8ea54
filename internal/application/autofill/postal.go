package autofill

import (
	"context"
	"errors"

	"github.com/etiqueta/backend/internal/infrastructure/postal"
	"go.uber.org/zap"
)

// Address field suffixes filled by the postal flow
const (
	suffixPostalCode    = "_cep"
	suffixStreet        = "_rua"
	suffixNeighborhood  = "_bairro"
	suffixCity          = "_cidade"
	suffixState         = "_uf"
	suffixNumber        = "_numero"
	suffixAddressFields = "_address_fields"
)

// PostalFlow fills the address of a party from its postal code
type PostalFlow struct {
	form     Form
	notifier Notifier
	lookup   postal.Lookup
	tokens   *RequestTokens
	logger   *zap.Logger
}

// NewPostalFlow creates a PostalFlow. tokens may be shared with other flows on the same form.
func NewPostalFlow(form Form, notifier Notifier, lookup postal.Lookup, tokens *RequestTokens, logger *zap.Logger) *PostalFlow {
	if tokens == nil {
		tokens = NewRequestTokens()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostalFlow{
		form:     form,
		notifier: notifier,
		lookup:   lookup,
		tokens:   tokens,
		logger:   logger,
	}
}

// OnCommit handles a committed {prefix}_cep field, prefix being "dest" or "remet".
// Codes that do not have exactly 8 digits are ignored without a request.
func (f *PostalFlow) OnCommit(ctx context.Context, prefix string) Outcome {
	key := prefix + suffixPostalCode
	token := f.tokens.Next(key)

	digits := postal.NormalizePostalCode(f.form.Value(key))
	if !postal.IsValidPostalCode(digits) {
		return OutcomeSkipped
	}

	addr, err := f.lookup.Lookup(ctx, digits)
	if !f.tokens.IsLatest(key, token) {
		return OutcomeStale
	}

	switch {
	case errors.Is(err, postal.ErrNotFound):
		f.notifier.Alert(MsgPostalNotFound)
		f.clear(prefix)
		return OutcomeNotFound
	case err != nil:
		f.notifier.Alert(MsgPostalUnavailable)
		f.logger.Error("postal code lookup failed",
			zap.String("field", key),
			zap.String("cep", digits),
			zap.Error(err))
		return OutcomeFailed
	}

	f.form.SetValue(prefix+suffixStreet, addr.StreetLine)
	f.form.SetValue(prefix+suffixNeighborhood, addr.NeighborhoodLine)
	f.form.SetValue(prefix+suffixCity, addr.City)
	f.form.SetValue(prefix+suffixState, addr.StateCode)
	f.form.Show(prefix + suffixAddressFields)
	f.form.Focus(prefix + suffixNumber)
	return OutcomeFilled
}

func (f *PostalFlow) clear(prefix string) {
	f.form.SetValue(prefix+suffixStreet, "")
	f.form.SetValue(prefix+suffixNeighborhood, "")
	f.form.SetValue(prefix+suffixCity, "")
	f.form.SetValue(prefix+suffixState, "")
	f.form.Hide(prefix + suffixAddressFields)
}
