package gemini

// Prompt templates for the three transcript analyses. Each asks for a strict
// output shape, but responses are still decoded defensively because the model
// may wrap the payload in prose or code fences.

const keywordPrompt = `You are a helpful assistant. Analyze the following podcast transcript and extract the top 3 most important key moments.

For each key moment, return:
- ` + "`keywords`" + `: An array of 5 to 6 **single-word**, highly descriptive keywords related to the visual theme or concept (e.g., ["technology", "innovation", "robotics", "future", "healthcare", "AI"]).
- ` + "`script`" + `: A **first-person summary** of the moment written in a natural, conversational tone (e.g., "I realized...", "We discussed..."). The script should be approximately **60-75 words**, or **25-30 seconds** when read aloud.

Make the summaries insightful and engaging. Use **ONLY JSON format** in your response - do NOT include timestamps, speaker names, or bullet points.

Example output:
[
  {
    "keywords": ["AI", "robotics", "healthcare", "future", "data", "ethics"],
    "script": "I talked about how artificial intelligence is completely transforming fields like healthcare and education. We explored how AI-driven tools are becoming more accessible and discussed the importance of responsible innovation. I realized the future isn't just about technology, it's also about how humans use it thoughtfully and ethically."
  }
]

Transcript:
`

const timedPrompt = `You are a helpful assistant. Analyze the following podcast transcript and identify 2-3 key moments.
Return their start and end times.

Return the response in JSON format with the following structure:
[
  {
    "title": "Brief descriptive title",
    "start": start_time_in_seconds,
    "end": end_time_in_seconds,
    "description": "One-sentence description"
  }
]

Make sure the time segments are around 30 seconds each (between 25-35 seconds). Focus on the most engaging and insightful moments that can standalone as short clips.

Transcript:
`

const summaryPrompt = `You are a helpful assistant. Write an abstract summary of the following podcast transcript.

Requirements:
- Start with a one-sentence headline describing the overall topic
- Cover the main themes and arguments in the order they appear
- Keep technical terms as the speakers used them
- Use markdown: headings, bullet points, bold for key terms
- End with a short "Takeaways" section

Transcript:
`
