package app

// Message types live in github.com/dbshell/dbshell/internal/msg so UI panes
// can emit them without importing this package. This file re-exports the ones
// the app model handles.

import appmsg "github.com/dbshell/dbshell/internal/msg"

// Re-export types used within the app package.
type (
	Pane                = appmsg.Pane
	FocusMsg            = appmsg.FocusMsg
	ConnectMsg          = appmsg.ConnectMsg
	ConnectErrMsg       = appmsg.ConnectErrMsg
	DisconnectMsg       = appmsg.DisconnectMsg
	SchemaLoadedMsg     = appmsg.SchemaLoadedMsg
	SchemaErrMsg        = appmsg.SchemaErrMsg
	LoadColumnsMsg      = appmsg.LoadColumnsMsg
	ColumnsLoadedMsg    = appmsg.ColumnsLoadedMsg
	ExecuteQueryMsg     = appmsg.ExecuteQueryMsg
	QueryStartedMsg     = appmsg.QueryStartedMsg
	QueryResultMsg      = appmsg.QueryResultMsg
	QueryErrMsg         = appmsg.QueryErrMsg
	UseDatabaseMsg      = appmsg.UseDatabaseMsg
	DatabaseSwitchedMsg = appmsg.DatabaseSwitchedMsg
	StatusMsg           = appmsg.StatusMsg
	InsertTextMsg       = appmsg.InsertTextMsg
	RefreshSchemaMsg    = appmsg.RefreshSchemaMsg
)

// Re-export constants.
const (
	PaneExplorer = appmsg.PaneExplorer
	PaneEditor   = appmsg.PaneEditor
	PaneResults  = appmsg.PaneResults
)
