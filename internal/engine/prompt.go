package engine

// LLM prompt templates — data only, no logic.

// analysisSystemPrompt pins the assistant role for transcript analysis.
const analysisSystemPrompt = `You are an expert in electrical construction analyzing video transcripts. Provide concise, structured analysis in the exact format specified.`

// analysisPrompt extracts four fixed categories from a transcript.
// Args: transcript text.
const analysisPrompt = `Analyze the following transcript from an electrical construction video and provide insights in this exact structure:

{
"Electrical_Terms": [
    "term1",
    "term2",
    ...
],
"Problems_Challenges": [
    "problem1",
    "problem2",
    ...
],
"Tools_Equipment": [
    "tool1 (brief description if needed)",
    "tool2 (brief description if needed)",
    ...
],
"Educational_Content": [
    "point1",
    "point2",
    ...
]
}

Rules:
1. Use only the categories provided.
2. Each category should contain a list of items.
3. Each item should be a short phrase or single sentence.
4. For Tools_Equipment, include a very brief description (1-3 words) only if necessary for clarity.
5. Do not include any additional text, explanations, or category labels outside of this structure.

Transcript:
%s

Provide your analysis strictly in the JSON-like structure specified above.`
