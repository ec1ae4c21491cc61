package summarize

import "strings"

// NotMedicalReport is the exact reply the model is told to give for
// documents that are not medical reports.
const NotMedicalReport = "<p><b>Provided document is not a valid medical report.</b></p>"

const promptTemplate = `
    You are an expert medical assistant.

    Your task is to determine whether the following document is a valid medical report. A valid medical report typically includes information like patient history, diagnosis, medications, test results, doctor notes, or treatment plans.

    If the document appears to be a random file, unrelated to medical information, respond exactly with:
    ` + NotMedicalReport + `

    If the document is a valid medical report, then analyze it and return a patient-friendly summary using only HTML formatting. 
    ⚠️ IMPORTANT: Format the output using only HTML tags. Follow these formatting rules strictly:
    - Use <p> for each paragraph.
    - Use <b> to bold headings or important terms (e.g., diagnosis names, dates, key phrases).
    - Use <ul> and <li> to format bullet points when listing findings or symptoms.
    - Ensure each section has proper spacing by wrapping blocks of related information in separate <p> tags.
    - Do NOT use markdown, headings (like <h1>), or any custom styles or inline CSS.
    - start report with heading Medical Report:

    {{TEXT}}
    `

// BuildPrompt embeds text verbatim into the instruction prompt.
func BuildPrompt(text string) string {
	return strings.Replace(promptTemplate, "{{TEXT}}", text, 1)
}
