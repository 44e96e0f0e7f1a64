// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

// DefaultClipAnalysisPrompt asks for viral clip metadata. Parameters:
// CONTEXT, DURATION, MIN_LENGTH, MAX_LENGTH, EXAMPLE_JSON.
const DefaultClipAnalysisPrompt = `You are an expert video editor and marketing strategist.
I have a video about: "{{ .CONTEXT }}".
The video is approximately {{ .DURATION }} seconds long.

Please generate 4 to 6 engaging "viral clips" metadata from this video context.
For each clip, invent a plausible start and end time within the 0 to {{ .DURATION }} range.
The clips should be between {{ .MIN_LENGTH }} and {{ .MAX_LENGTH }} seconds long.

Each clip must look like this example:
{{ .EXAMPLE_JSON }}

Return the response in JSON format.`

// DefaultRepurposePrompt asks for social post copy. Parameters: TITLE,
// SUMMARY, TAGS, PLATFORM, GUIDANCE.
const DefaultRepurposePrompt = `I have a short video clip titled "{{ .TITLE }}".
Summary: "{{ .SUMMARY }}".
Tags: {{ .TAGS }}.

Please write a high-converting, engaging social media post for {{ .PLATFORM }} to promote this clip.
{{ .GUIDANCE }}
Include emojis and hashtags. Keep it professional yet catchy.`

// DefaultChatSystemPrompt is the assistant's system instruction.
// Parameters: CONTEXT.
const DefaultChatSystemPrompt = `You are a helpful assistant for a video editing platform.
The user is asking questions about a video with the following context: "{{ .CONTEXT }}".
Answer their questions about the content, or help them write scripts, titles, or summaries.`
