package experiments

// Merge projects descriptors against the enabled set. It is pure: the
// output depends only on its inputs, keeps descriptor order, and shares
// no slices with a previous call.
func Merge(descriptors []Descriptor, enabled EnabledSet) []DisplayRow {
	rows := make([]DisplayRow, 0, len(descriptors))
	for _, d := range descriptors {
		rows = append(rows, DisplayRow{
			Name:      d.Name,
			IsEnabled: enabled.Has(d.Name),
			Metadata:  d.Metadata,
		})
	}
	return rows
}
