package coverage

// CombineItems sums two items and recomputes the percentage from the summed
// counts. An item with nothing covered reports 100%, even when Total > 0.
func CombineItems(a, b Item) Item {
	covered := a.Covered + b.Covered
	total := a.Total + b.Total

	pct := 100.0
	if covered > 0 {
		pct = 100 * covered / total
	}

	return Item{
		Total:   total,
		Covered: covered,
		Skipped: a.Skipped + b.Skipped,
		Pct:     pct,
	}
}

// CombineEntries applies CombineItems to each category.
func CombineEntries(a, b Entry) Entry {
	return Entry{
		Lines:      CombineItems(a.Lines, b.Lines),
		Functions:  CombineItems(a.Functions, b.Functions),
		Statements: CombineItems(a.Statements, b.Statements),
		Branches:   CombineItems(a.Branches, b.Branches),
	}
}

// EmptyEntry returns the identity used when reducing entries. Its percentages
// are 0, unlike the 100% CombineItems reports for zero coverage.
func EmptyEntry() Entry {
	return Entry{}
}

// ReduceEntries folds CombineEntries over entries, starting from EmptyEntry.
func ReduceEntries(entries []Entry) Entry {
	result := EmptyEntry()
	for _, e := range entries {
		result = CombineEntries(result, e)
	}
	return result
}
