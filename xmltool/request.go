package xmltool

import "github.com/poekit/poekit/protocol"

// toolUsagePrompt instructs the bot to answer with XML tool-call blocks.
const toolUsagePrompt = `

You are a powerful AI assistant. Your core mission is to accurately and efficiently answer user questions and execute tasks.

To achieve this, you have been given a set of tools. When you determine that using a tool can fetch real-time information, perform a specific action, or provide a more precise answer than your built-in knowledge allows, you MUST proactively use these tools. Do not rely solely on your training data.

Tool Calling Rules:

1.  Be Proactive: Actively look for opportunities to use your tools. If you think a tool might help the user, use it.

2.  Strict Formatting: All tool calls must strictly adhere to the following XML format. This is not a suggestion; it is a mandatory requirement.

XML Calling Format Example:

When you need to call a tool, your response MUST ONLY contain XML blocks with the following structure.

<tool_call>

  <invoke name="tool_name">

    <parameter name="parameter_1_name">value_for_parameter_1</parameter>

    <parameter name="parameter_2_name">value_for_parameter_2</parameter>

    <!-- Add more parameters as needed -->

  </invoke>

</tool_call>

<!-- If you need to call multiple tools at once, you can place multiple <tool_call> blocks sequentially like this -->

<tool_call>

  <invoke name="another_tool_name">

    <parameter name="parameter_A">value_A</parameter>

  </invoke>

</tool_call>

Explanation:

- <tool_call>: The outermost wrapper for each individual tool call.

- <invoke name="...">: The name attribute must be the exact name of the tool you are calling.

- <parameter name="...">: The name attribute is the name of the parameter the tool requires, and the content between the tags is its value. All parameter values must be properly XML-escaped (e.g., & must be written as &amp;).

Now, begin your work based on the user's next prompt. Remember, you are a problem-solver, and your tools are your most powerful weapons.
`

// toolResultsPrompt instructs the bot to turn tool results into a final answer.
const toolResultsPrompt = `

You have previously requested one or more tool calls. The results are now available. Your new task is to analyze these results and formulate a final, comprehensive answer for the user in natural language.

The tool results are provided to you in the following XML format:

**Your Instructions:**

1.  **Analyze the Results**: Carefully examine the content within the ` + "`<output>` or `<error>`" + ` tags for each result.
2.  **Synthesize, Don't Recite**: Do not just repeat the raw tool output (like raw JSON). You **must interpret** the data, synthesize information if there are multiple results, and present it to the user in a clear, conversational, and helpful way.
3.  **Formulate the Final Answer**: Your response should be the complete and final answer to the user's original query. Do not output any more ` + "`<tool_call>`" + ` blocks unless the results explicitly indicate a necessary follow-up action.
4.  **Handle Errors Gracefully**: If a tool returned an error, politely inform the user that you were unable to retrieve that specific piece of information and, if appropriate, briefly explain the issue (e.g., "I couldn't find information for that city.").
`

// AppendToolsAsXML rewrites req.Tools into an XML block appended to the last
// user message, together with the usage prompt. The caller is expected to
// clear req.Tools afterwards so the definitions are not also sent natively.
// The query slice is cloned so the caller's messages are left untouched.
func AppendToolsAsXML(req *protocol.ChatRequest) {
	if len(req.Tools) == 0 {
		return
	}
	appendToLastUserMessage(req, toolUsagePrompt+ToolsXML(req.Tools))
}

// AppendToolResultsAsXML rewrites req.ToolResults into an XML block appended
// to the last user message, together with the analysis prompt. The caller is
// expected to clear req.ToolCalls and req.ToolResults afterwards.
func AppendToolResultsAsXML(req *protocol.ChatRequest) {
	if len(req.ToolResults) == 0 {
		return
	}
	appendToLastUserMessage(req, toolResultsPrompt+ResultsXML(req.ToolResults))
}

func appendToLastUserMessage(req *protocol.ChatRequest, text string) {
	query := make([]protocol.Message, len(req.Query))
	copy(query, req.Query)
	req.Query = query

	for i := len(query) - 1; i >= 0; i-- {
		if query[i].Role == protocol.RoleUser {
			query[i].Content += text
			return
		}
	}
}
