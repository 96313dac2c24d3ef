package ai

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are an expert ATS (Applicant Tracking System) and resume analyzer. Your task is to analyze the following resume for a %[1]s position.

Resume Text:
%[2]s

Job Role: %[1]s

Important Keywords for this role:
%[3]s

Please analyze this resume and provide the following:
1. A score from 0-100 indicating how well the resume matches the job role
2. A list of strengths in the resume
3. A list of areas for improvement
4. Specific suggestions to improve the resume for this job role
5. An assessment of the use of action verbs (score 1-5)
6. An assessment of readability (score 1-5)

Format your response as a JSON object with the following structure and nothing else:
{
  "score": number,
  "strengths": ["strength1", "strength2", ...],
  "improvements": ["improvement1", "improvement2", ...],
  "suggestions": ["suggestion1", "suggestion2", ...],
  "actionVerbsScore": number,
  "readabilityScore": number
}
`

// BuildPrompt renders the enrichment prompt for one resume.
func BuildPrompt(resumeText, role string, keywords []string) string {
	return fmt.Sprintf(promptTemplate, role, strings.TrimSpace(resumeText), strings.Join(keywords, ", "))
}
