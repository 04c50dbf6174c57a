package contracts

// ITokenManagement accumulates token usage across model calls.
type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	GetCurrentTokenUsage() (total int, input int, output int)
	DisplayTokens(chatProviderName string, chatModel string)
	ClearToken()
}
