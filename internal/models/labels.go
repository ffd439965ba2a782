package models

// Menu labels are the exact button texts rendered on reply keyboards. The
// transport adapter resolves them to intents before the engine ever sees the
// message, so the engine's dispatch works on typed intents only.
const (
	LabelBalance    = "💰 Balance"
	LabelRefer      = "👥 Refer"
	LabelWithdraw   = "💵 Withdraw"
	LabelCreateTask = "🎁 Create Gmail"
	LabelSupport    = "💌 Support group 🛑"
	LabelBack       = "⬅️ Back"
	LabelAddBalance = "➕ Add Balance"
	LabelSetBalance = "✏️ Set Balance"
	LabelReduce     = "➖ Reduce Balance"
	LabelRequests   = "📋 All Requests"
	LabelUserList   = "👥 User List"
	LabelTaskQueue  = "📂 Task Requests"
	LabelSetPrice   = "⚙️ Set Task Price"
	LabelBkash      = "📲 Bkash"
	LabelNagad      = "📲 Nagad"
)

var labelIntents = map[string]Intent{
	LabelBalance:    IntentBalance,
	LabelRefer:      IntentRefer,
	LabelWithdraw:   IntentWithdraw,
	LabelCreateTask: IntentCreateTask,
	LabelSupport:    IntentSupport,
	LabelBack:       IntentBack,
	LabelAddBalance: IntentAddBalance,
	LabelSetBalance: IntentSetBalance,
	LabelReduce:     IntentReduce,
	LabelRequests:   IntentRequests,
	LabelUserList:   IntentUserList,
	LabelTaskQueue:  IntentTaskQueue,
	LabelSetPrice:   IntentSetPrice,
	LabelBkash:      IntentPickBkash,
	LabelNagad:      IntentPickNagad,
}

// IntentForLabel maps a menu label to its intent; unknown text is IntentNone
// and flows into the active session as free-form step input.
func IntentForLabel(text string) Intent {
	return labelIntents[text]
}
