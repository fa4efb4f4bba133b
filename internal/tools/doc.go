// Package tools implements the local tool surface exposed to the agent:
// image generation, knowledge-base lookup, current time, geolocation,
// public IP and web search. Tools are registered with Genkit once at
// startup and selected per request by capability.
package tools
