package llm

var RenderTranscript = renderTranscript
