package interviewgen

import (
	"strconv"
	"strings"
)

const systemInstruction = "You are an expert interview question generator. Always return valid JSON with a 'questions' array containing question objects."

const questionsPrompt = `
Generate interview questions for a {{duration}}-minute interview.

Job Title: {{title}}
Job Description: {{about}}
Required Skills: {{requiredSkills}}
Experience Level: {{experienceLevel}}
Job Type: {{jobType}}

Requirements:
- Generate exactly 4-5 questions only
- Mix: 40-50% technical, 25-35% behavioral (STAR format), 20-30% problem-solving
- Adjust difficulty by level: Entry (foundations/learning), Mid (experience/collaboration), Senior (leadership/architecture)
- Questions: 20-40 words, open-ended, role-specific, answerable in 2-4 min
- Include at least 1 behavioral question, at least 1 scenario-based technical question
- Questions must be job-specific, legally compliant, and bias-free

IMPORTANT: You must return a valid JSON object with this exact structure:
{
  "questions": [
    {
      "question": "Your question text here (20-40 words)",
      "category": "technical|behavioral|problem-solving|scenario|motivation",
      "focusArea": "Specific skill or area being assessed",
      "expectedDuration": "2-3 minutes"
    }
  ]
}

Sequence questions: warm-up → technical → behavioral → problem-solving → closing.
Ensure questions are tailored to the specific job role and required skills.
`

// JobContext is everything the prompt needs from the opening. Duration is
// the interview length in minutes.
type JobContext struct {
	Title           string
	About           string
	RequiredSkills  []string
	ExperienceLevel string
	JobType         string
	DurationMinutes int
}

// Prompt renders the question generation prompt for one opening.
func Prompt(jc JobContext) string {
	r := strings.NewReplacer(
		"{{duration}}", strconv.Itoa(jc.DurationMinutes),
		"{{title}}", jc.Title,
		"{{about}}", jc.About,
		"{{requiredSkills}}", strings.Join(jc.RequiredSkills, ", "),
		"{{experienceLevel}}", jc.ExperienceLevel,
		"{{jobType}}", jc.JobType,
	)
	return r.Replace(questionsPrompt)
}
