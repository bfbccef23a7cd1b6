package db

// SchemaSQL contains the database schema initialization SQL. The single %d
// verb is the embedding dimension, substituted in InitSchema.
//
// namespace is the partition key on both tables; created_at orders records
// within a partition. Episodes additionally carry an HNSW vector index and a
// BM25 fulltext index on the description for similarity retrieval.
const SchemaSQL = `
    -- ==========================================================================
    -- EPISODE TABLE (append-only interaction records)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS episode SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS namespace ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS actor_id ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS filename_pattern ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS file_signature ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS sheet_metadata ON episode TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS column_mappings ON episode TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS user_corrections ON episode TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS success ON episode TYPE bool;
    DEFINE FIELD IF NOT EXISTS match_rate ON episode TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS schema_version ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS target_table ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON episode TYPE option<array<float>>;
    DEFINE FIELD IF NOT EXISTS created_at ON episode TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS episode_namespace ON episode FIELDS namespace;
    DEFINE INDEX IF NOT EXISTS episode_created ON episode FIELDS created_at;
    DEFINE INDEX IF NOT EXISTS episode_signature ON episode FIELDS file_signature;
    DEFINE INDEX IF NOT EXISTS episode_table ON episode FIELDS target_table;
    DEFINE INDEX IF NOT EXISTS episode_embedding ON episode FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
    DEFINE ANALYZER IF NOT EXISTS episode_analyzer TOKENIZERS class FILTERS lowercase, ascii, snowball(english);
    DEFINE INDEX IF NOT EXISTS episode_description_ft ON episode FIELDS description FULLTEXT ANALYZER episode_analyzer BM25;

    -- ==========================================================================
    -- REFLECTION TABLE (consolidated patterns, superseded whole per cluster)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS reflection SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS namespace ON reflection TYPE string;
    DEFINE FIELD IF NOT EXISTS cluster_key ON reflection TYPE string;
    DEFINE FIELD IF NOT EXISTS target_table ON reflection TYPE string;
    DEFINE FIELD IF NOT EXISTS file_signature ON reflection TYPE string;
    DEFINE FIELD IF NOT EXISTS pattern_text ON reflection TYPE string;
    DEFINE FIELD IF NOT EXISTS confidence ON reflection TYPE float ASSERT $value >= 0.0 AND $value <= 1.0;
    DEFINE FIELD IF NOT EXISTS supporting_episode_ids ON reflection TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS schema_version_observed ON reflection TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON reflection TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS reflection_namespace ON reflection FIELDS namespace;
    DEFINE INDEX IF NOT EXISTS reflection_cluster ON reflection FIELDS cluster_key UNIQUE;
`
