package tui

type state int

const (
	sourcesState state = iota
	searchState
	itemsState
	detailsState
	errorState
)
