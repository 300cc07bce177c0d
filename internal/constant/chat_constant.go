package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Domain event codes published on the NATS EVENTS stream. The subject is
	// "events." + code.
	EventDocumentProcessed = "DOCUMENT_PROCESSED"
	EventSummaryRefined    = "SUMMARY_REFINED"
	EventQueryAnswered     = "QUERY_ANSWERED"

	// Document lifecycle stages pushed to the progress websocket. The chat
	// pipeline stages come from the fusion package.
	StageDocumentProcessed = "document_processed"
	StageSummaryRefined    = "summary_refined"

	// Only the head of the extracted text goes into the summary prompt.
	SummaryChunkSize    = 6000
	SummaryChunkOverlap = 0

	DocumentSummarySystemPrompt = `You are an assistant for Indian chartered accountants. You summarize uploaded working documents (tax filings, ledgers, invoices, financial statements, legal notes) so the accountant can see at a glance what a file contains.`

	DocumentSummaryPrompt = `Summarize the following document excerpt in 2-3 sentences. Mention the document's apparent purpose and any amounts, periods, or parties that stand out. Do not speculate beyond the text.

DOCUMENT: %s

EXCERPT:
%s`
)
