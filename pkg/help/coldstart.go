package help

const ColdstartYAML = `# tweetrank Quick Start

input:
  format: "One JSON object per line; hashtags at doc.entities.hashtags[*].text, language at doc.lang"
  row_exports: "CouchDB _all_docs rows ending in ',' are handled by the default --trim row"
  malformed_lines: "Skipped silently, they still count toward partitioning"

commands:
  single_process: |
    tweetrank rank --workers 8 bigTwitter.json

  several_datasets: |
    tweetrank rank -d tinyTwitter.json -d smallTwitter.json --top 10

  structured_output: |
    tweetrank rank --format yaml tinyTwitter.json

  mpi_launcher: |
    mpirun -np 8 tweetrank worker --coordinator node0:7946 bigTwitter.json

  explicit_ranks: |
    tweetrank worker --rank 0 --size 3 --listen :7946 data.json
    tweetrank worker --rank 1 --size 3 --coordinator host0:7946 data.json
    tweetrank worker --rank 2 --size 3 --coordinator host0:7946 data.json

  kafka_transport: |
    tweetrank worker --transport kafka --kafka-brokers kafka:9092 --run-id nightly-42 data.json

  history: |
    tweetrank runs
    tweetrank show            # latest run
    tweetrank show <run-id> --format json

partitioning:
  - "Line i (1-based) belongs to rank i % size"
  - "Rank 0 is the coordinator: it gathers, ranks and prints"
  - "Results do not depend on the number of workers"

ranking:
  - "Count descending, ties broken by token ascending"
  - "Hashtags are lower-cased, repeats within one post all count"

storage:
  sqlite: "Every run is recorded in tweetrank.db unless --no-db"
  mongodb: "--mongo-uri adds global counts to the hashtags and languages collections"

error_behavior:
  - "Bad flags or config: fail fast before scanning"
  - "Exit codes: 0=success, 1=usage or config error, 2=runtime error"
`
