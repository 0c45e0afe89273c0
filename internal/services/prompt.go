package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

const truncationMarker = "\n...[resume truncated for length]"

type PromptBuilder struct {
	recommendThreshold int
	maxResumeChars     int
}

func NewPromptBuilder(recommendThreshold, maxResumeChars int) *PromptBuilder {
	return &PromptBuilder{
		recommendThreshold: recommendThreshold,
		maxResumeChars:     maxResumeChars,
	}
}

// BuildCandidateAnalysisPrompt creates the recruiter prompt for scoring one resume against a job description
func (pb *PromptBuilder) BuildCandidateAnalysisPrompt(jobDescription, resumeText string) string {
	return fmt.Sprintf(`You are a highly intelligent AI-powered Technical Recruiter.
Your primary goal is to dynamically adapt your expertise to match the specific role described in the provided Job Description.
You must act as a specialist for whatever role is presented to you.

Instructions:
1. Determine Key Criteria: First, carefully analyze the provided 'Job Description' to identify the 5-7 most critical skills, technologies and qualifications required for the role. This set of criteria becomes your evaluation rubric. Do not use a generic software engineering rubric, it must be tailored to the specific job.
2. Analyze the Resume against Criteria: Next, thoroughly review the candidate's 'Resume Text'. Scrutinize their experience, projects and listed skills to find evidence of the key criteria you identified in step 1.
3. Score and Justify: Based on how well the resume aligns with the key criteria, provide a holistic fit score from 0 to 100. Your reasoning must clearly connect the resume's content (or lack thereof) to the job description's specific requirements.
4. Maintain Objectivity: Base your entire analysis strictly on the information given in the resume and the job description. Do not invent or infer details.
5. JSON Output Only: Your entire response must be a single, valid JSON object. Do not include any text, explanations or markdown formatting before or after the JSON object.

Job Description:
<job_description>
%s
</job_description>

Resume Text:
<resume_text>
%s
</resume_text>

Required JSON Output Format:
{
  "candidate_name": "Full Name",
  "score": <integer from 0-100>,
  "summary": "A 2-3 sentence summary of the candidate's overall fit for this specific role.",
  "reasoning": "A single string containing a detailed analysis in markdown format. It must start with '**Strengths:**' followed by bullet points and then '**Gaps:**' followed by bullet points. For example: '**Strengths:**\n- 5+ years of Java experience.\n- Experience with REST APIs and SQL.\n\n**Gaps:**\n- Lacks experience with cloud platforms (AWS/GCP) mentioned in the JD.'",
  "is_recommended": <boolean, true if score >= %d, else false>
}`,
		strings.TrimSpace(jobDescription),
		pb.truncateResume(strings.TrimSpace(resumeText)),
		pb.recommendThreshold,
	)
}

func (pb *PromptBuilder) truncateResume(text string) string {
	if pb.maxResumeChars <= 0 || utf8.RuneCountInString(text) <= pb.maxResumeChars {
		return text
	}

	runes := []rune(text)
	return string(runes[:pb.maxResumeChars]) + truncationMarker
}

// BuildSearchQuery turns a free-text recruiter query into the text that gets embedded for candidate search.
func (pb *PromptBuilder) BuildSearchQuery(query string) string {
	return fmt.Sprintf("Candidate resume with experience in: %s", strings.TrimSpace(query))
}

// CandidateAnalysisSchema describes the JSON object the model must return.
func CandidateAnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"candidate_name": {Type: genai.TypeString, Description: "The candidate's name, extracted from the resume."},
			"score":          {Type: genai.TypeInteger, Description: "A score from 0 to 100 representing the fit for the job."},
			"summary":        {Type: genai.TypeString, Description: "A 2-3 sentence summary of the candidate's fit."},
			"reasoning":      {Type: genai.TypeString, Description: "Markdown starting with **Strengths:** bullets then **Gaps:** bullets."},
			"is_recommended": {Type: genai.TypeBoolean, Description: "Whether the candidate is recommended for an interview."},
		},
		Required:         []string{"candidate_name", "score", "summary", "reasoning", "is_recommended"},
		PropertyOrdering: []string{"candidate_name", "score", "summary", "reasoning", "is_recommended"},
	}
}
