package domain

// CommandContext carries the chat origin of a command invocation.
type CommandContext struct {
	ChannelID string
	UserID    string
	Username  string
	Raw       string
	Args      []string
}

func NewCommandContext(channelID, userID, username, raw string, args []string) *CommandContext {
	return &CommandContext{
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		Raw:       raw,
		Args:      args,
	}
}
