package generator

// applyConstraints is the cross-field pass over a freshly generated valid
// record. The order is fixed: amount, then settlement date, then secondary
// identifier, each keyed off the transaction code.
func applyConstraints(ctx *FieldContext) error {
	layout, rec := ctx.Layout, ctx.Record
	zero := IsZeroAmountCode(rec.Value(layout.CodeField))

	if zero && layout.AmountField != "" {
		rec.Set(layout.AmountField, ZeroAmount)
	}

	if zero && layout.DateField != "" && rec.Has(layout.DateField) {
		d, err := ctx.Cal.AddWorkingDays(ctx.Today, layout.ZeroCodeDateOffset)
		if err != nil {
			return err
		}
		rec.Set(layout.DateField, d.Format(DateLayout))
	}

	if layout.SecondaryField != "" && rec.Has(layout.SecondaryField) {
		if !zero || !ctx.Src.Bool() {
			rec.Unset(layout.SecondaryField)
		}
	}
	return nil
}
