package analyzer

const systemPrompt = `You are a senior engineering mentor who reviews GitHub profiles and gives
developers honest, specific and encouraging career growth feedback.
Base every statement on the profile data provided. Refer to concrete repositories,
languages and topics by name. Avoid generic advice that could apply to anyone.`

// profileContext is shared by every section prompt. Arguments: username,
// display name, bio, public repos, followers, account creation date,
// language summary, repository summary.
const profileContext = `Developer: %s
Name: %s
Bio: %s
Public repositories: %d
Followers: %d
Member since: %s

LANGUAGES (share of code across analyzed repositories):
%s

REPOSITORIES:
%s`

const strengthsPrompt = `%s

List exactly %d key strengths this developer demonstrates.
Write one strength per line as a bullet starting with "- ".
Each bullet is a single sentence that cites evidence from the repositories above.
Output only the bullets, with no heading or closing remarks.`

const improvementPrompt = `%s

List exactly %d constructive areas where this developer could grow.
Write one area per line as a bullet starting with "- ".
Be kind but specific: name the repositories or habits each point is based on.
Output only the bullets, with no heading or closing remarks.`

const recommendationsPrompt = `%s

List exactly %d actionable recommendations that would most help this developer grow
over the next six months (projects to build, technologies to learn, practices to adopt).
Write one recommendation per line as a bullet starting with "- ".
Output only the bullets, with no heading or closing remarks.`

const technicalAssessmentPrompt = `%s

Write a technical assessment of this developer in a single paragraph of 4 to 6 sentences.
Cover their technical breadth and depth, the kind of projects they build,
and the seniority level the profile suggests.
Output only the paragraph, with no heading or bullet points.`

const ratingPrompt = `%s

Rate this GitHub profile. Score each of these five categories from 0 to 10,
one per line, followed by a one-sentence justification:

**Code Quality & Practices**: X/10 - justification
**Project Diversity**: X/10 - justification
**Activity & Consistency**: X/10 - justification
**Documentation**: X/10 - justification
**Community Impact**: X/10 - justification

Then give the overall score on its own line, using one decimal place, exactly as:
Rating: X.X/10

Finish with a short paragraph that summarizes the assessment.`
