package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/cinelist/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgListFetched
	MsgReloaded
)

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(lists []models.CustomList) Msg {
	return Msg{kind: MsgSnapshot, data: lists}
}

type listFetched struct {
	list *models.CustomList
	err  error
}

// listFetchedMsg is the constructor for [MsgListFetched]
func listFetchedMsg(list *models.CustomList, err error) Msg {
	return Msg{kind: MsgListFetched, data: listFetched{list: list, err: err}}
}

// reloadedMsg is the constructor for [MsgReloaded]
func reloadedMsg() Msg {
	return Msg{kind: MsgReloaded}
}
