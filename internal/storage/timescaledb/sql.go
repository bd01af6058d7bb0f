package timescaledb

const createTableSQL = `
CREATE TABLE IF NOT EXISTS dose_readings (
    time timestamp WITH TIME ZONE NOT NULL,
    devicename text NULL,
    sessionid text NULL,
    skintype int NULL,
    spf int NULL,
    uvindex float4 NULL,
    doseincrement float4 NULL,
    cumulativedose float4 NULL,
    burnpercent float4 NULL,
    timetoburnmin float4 NULL,
    smoothedtoburnmin float4 NULL,
    overthreshold boolean NULL,
    sensorsuspect boolean NULL
);
CREATE INDEX IF NOT EXISTS dose_readings_session_idx ON dose_readings (sessionid, time DESC);
`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('dose_readings', 'time', if_not_exists => true);`

const create1mViewSQL = `CREATE MATERIALIZED VIEW IF NOT EXISTS dose_readings_1m
WITH (timescaledb.continuous, timescaledb.materialized_only = false)
AS
SELECT
    time_bucket('1 minute', time) as bucket,
    devicename,
    sessionid,
    avg(uvindex) as uvindex,
    max(uvindex) as max_uvindex,
    min(uvindex) as min_uvindex,
    max(cumulativedose) as cumulativedose,
    max(burnpercent) as burnpercent,
    min(timetoburnmin) as timetoburnmin,
    bool_or(overthreshold) as overthreshold,
    bool_or(sensorsuspect) as sensorsuspect
FROM dose_readings
GROUP BY bucket, devicename, sessionid
WITH NO DATA;
`

const create1hViewSQL = `CREATE MATERIALIZED VIEW IF NOT EXISTS dose_readings_1h
WITH (timescaledb.continuous, timescaledb.materialized_only = false)
AS
SELECT
    time_bucket('1 hour', time) as bucket,
    devicename,
    sessionid,
    avg(uvindex) as uvindex,
    max(uvindex) as max_uvindex,
    min(uvindex) as min_uvindex,
    max(cumulativedose) as cumulativedose,
    max(burnpercent) as burnpercent,
    min(timetoburnmin) as timetoburnmin,
    bool_or(overthreshold) as overthreshold,
    bool_or(sensorsuspect) as sensorsuspect
FROM dose_readings
GROUP BY bucket, devicename, sessionid
WITH NO DATA;
`

const addAggregationPolicy1mSQL = `SELECT add_continuous_aggregate_policy('dose_readings_1m', INTERVAL '1 month', INTERVAL '1 minute', INTERVAL '1 minute', if_not_exists => true);`
const addAggregationPolicy1hSQL = `SELECT add_continuous_aggregate_policy('dose_readings_1h', INTERVAL '2 years', INTERVAL '1 hour', INTERVAL '1 hour', if_not_exists => true);`
