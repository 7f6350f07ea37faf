// Package config loads pipeline configuration from the environment.
//
// A .env file in the working directory is merged in when present. The
// credential pool for the generation backend is discovered from
// GENAI_API_KEY plus the numbered GENAI_API_KEY_1, GENAI_API_KEY_2, ...
// variables; numbering stops at the first gap. A remote backend with an
// empty pool is a startup error.
package config
